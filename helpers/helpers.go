// Random small util stash, keep it short.
package helpers

import (
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"
)

func FoldErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	ss := make([]string, 0, len(errs))
	for _, e := range errs {
		if e != nil {
			ss = append(ss, e.Error())
		}
	}
	if len(ss) == 0 {
		return nil
	}
	return errors.Errorf(strings.Join(ss, "\n"))
}

// WrapErrChan runs f and sends its error (including nil) to errch.
// Pair with FoldErrChan over a buffered channel.
func WrapErrChan(wg *sync.WaitGroup, errch chan<- error, f func() error) {
	defer wg.Done()
	errch <- f()
}

func FoldErrChan(errch <-chan error) error {
	errs := make([]error, 0, 8)
	for e := range errch {
		if e != nil {
			errs = append(errs, e)
		}
	}
	return FoldErrors(errs)
}

func IntSecondDefault(x int, def time.Duration) time.Duration {
	if x == 0 {
		return def
	}
	return time.Duration(x) * time.Second
}

func IntMillisecondDefault(x int, def time.Duration) time.Duration {
	if x == 0 {
		return def
	}
	return time.Duration(x) * time.Millisecond
}
