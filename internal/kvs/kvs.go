// Package kvs is a tiny persisted string key/value store used for
// settings that must survive power loss, like wifi credentials.
package kvs

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/extremofile"

	"github.com/mindspring/zhihui/log2"
)

const modName = "kvs"

type Store struct { //nolint:maligned
	Log *log2.Log

	mu sync.Mutex
	m  map[string]string
	w  io.Writer
}

// Open loads the store from dir, creating it when missing. A corrupt
// file is logged and treated as empty; only unusable storage is fatal.
func Open(dir string, log *log2.Log) (*Store, error) {
	b, w, err := extremofile.Open(dir)
	if w == nil {
		return nil, errors.Annotatef(err, "%s open dir=%s", modName, dir)
	}
	if err != nil && !extremofile.IsCorrupt(err) {
		log.Errorf("%s read dir=%s err=%v", modName, dir, err)
	}
	s := &Store{
		Log: log,
		m:   make(map[string]string),
		w:   w,
	}
	if len(b) > 0 {
		if err = json.Unmarshal(b, &s.m); err != nil {
			log.Errorf("%s corrupt dir=%s err=%v", modName, dir, err)
			s.m = make(map[string]string)
		}
	}
	return s, nil
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *Store) GetString(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// Set persists immediately. Callers treat persist errors as non-fatal,
// the in-memory value is updated either way.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return s.flush()
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[key]; !ok {
		return nil
	}
	delete(s.m, key)
	return s.flush()
}

func (s *Store) flush() error {
	b, err := json.Marshal(s.m)
	if err != nil {
		panic("code error kvs marshal: " + err.Error())
	}
	if _, err = s.w.Write(b); err != nil {
		return errors.Annotatef(err, "%s write", modName)
	}
	return nil
}
