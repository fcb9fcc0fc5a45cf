// Package tele is the MQTT link to the backend. It carries device
// state up and response text down to the apps. The link is fully
// optional, a disabled config yields a no-op instance.
package tele

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mindspring/zhihui/helpers"
	"github.com/mindspring/zhihui/log2"
)

const defaultStorePath = "/var/lib/zhihui/telemessages"

// MessageFunc handles one backend message. Return false if the payload
// was not recognized.
type MessageFunc func(ctx context.Context, payload []byte) bool

type Tele struct { //nolint:maligned
	log       *log2.Log
	enabled   bool
	m         mqtt.Client
	onMessage func([]byte) bool

	topicPrefix  string
	topicConnect string
	topicState   string
	topicEvent   string
	topicMessage string
}

func (self *Tele) Init(ctx context.Context, log *log2.Log, conf Config, onMessage MessageFunc) error {
	self.log = log
	self.enabled = conf.Enabled
	if !self.enabled {
		self.log.Debugf("tele disabled")
		return nil
	}
	mqtt.ERROR = log
	mqtt.CRITICAL = log
	mqtt.WARN = log
	if conf.LogDebug {
		mqtt.DEBUG = log
	}

	clientID := conf.DeviceID
	if clientID == "" {
		clientID = "zhihui0"
	}
	credFun := func() (string, string) {
		return clientID, conf.Password
	}
	self.onMessage = func(payload []byte) bool {
		return onMessage(ctx, payload)
	}
	self.topicPrefix = clientID
	self.topicConnect = fmt.Sprintf("%s/c", self.topicPrefix)
	self.topicState = fmt.Sprintf("%s/w/1s", self.topicPrefix)
	self.topicEvent = fmt.Sprintf("%s/w/1e", self.topicPrefix)
	self.topicMessage = fmt.Sprintf("%s/r/m", self.topicPrefix)
	keepAlive := helpers.IntSecondDefault(conf.KeepaliveSec, 60)
	pingTimeout := helpers.IntSecondDefault(conf.PingTimeoutSec, 30)
	retryInterval := helpers.IntSecondDefault(conf.KeepaliveSec/2, 30)
	storePath := conf.StorePath
	if storePath == "" {
		storePath = defaultStorePath
	}

	mopt := mqtt.NewClientOptions().
		AddBroker(conf.Broker).
		SetBinaryWill(self.topicConnect, []byte{0x00}, 1, true).
		SetCleanSession(false).
		SetClientID(clientID).
		SetCredentialsProvider(credFun).
		SetDefaultPublishHandler(self.messageHandler).
		SetKeepAlive(keepAlive).
		SetPingTimeout(pingTimeout).
		SetOrderMatters(false).
		SetResumeSubs(true).
		SetStore(mqtt.NewFileStore(storePath)).
		SetConnectRetryInterval(retryInterval).
		SetOnConnectHandler(self.onConnectHandler).
		SetConnectionLostHandler(self.connectLostHandler).
		SetConnectRetry(true)
	self.m = mqtt.NewClient(mopt)
	if token := self.m.Connect(); token.Error() != nil {
		self.log.Errorf("tele connect err=%v", token.Error())
	}
	return nil
}

func (self *Tele) Close() {
	if !self.enabled || self.m == nil {
		return
	}
	if token := self.m.Unsubscribe(self.topicMessage); token.Wait() && token.Error() != nil {
		self.log.Infof("tele unsubscribe err=%v", token.Error())
	}
	self.m.Disconnect(250)
}

func (self *Tele) IsConnected() bool {
	return self.enabled && self.m != nil && self.m.IsConnectionOpen()
}

// State publishes the device state snapshot, qos 1.
func (self *Tele) State(payload []byte) bool {
	if !self.enabled || self.m == nil {
		return false
	}
	self.m.Publish(self.topicState, 1, false, payload)
	return true
}

// Event publishes an app event, for example a recognized utterance.
func (self *Tele) Event(payload []byte) bool {
	if !self.enabled || self.m == nil {
		return false
	}
	self.m.Publish(self.topicEvent, 1, false, payload)
	return true
}

func (self *Tele) messageHandler(c mqtt.Client, msg mqtt.Message) {
	payload := msg.Payload()
	self.log.Debugf("tele income message len=%d", len(payload))
	if !self.onMessage(payload) {
		self.log.Infof("tele message not handled (%x)", payload)
	}
}

func (self *Tele) connectLostHandler(c mqtt.Client, err error) {
	self.log.Infof("tele disconnect err=%v", err)
}

func (self *Tele) onConnectHandler(c mqtt.Client) {
	self.log.Infof("tele connect")
	if token := c.Subscribe(self.topicMessage, 1, nil); token.Wait() && token.Error() != nil {
		self.log.Errorf("tele subscribe err=%v", token.Error())
	} else {
		c.Publish(self.topicConnect, 1, true, []byte{0x01})
	}
}
