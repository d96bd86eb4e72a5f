package ws

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned by DecodeInput for a type clients may not send.
var ErrUnknownType = errors.New("unknown message type")

// Client -> Server message types
const (
	MsgPress      uint8 = 0x01
	MsgAim        uint8 = 0x02
	MsgRelease    uint8 = 0x03
	MsgPing       uint8 = 0x04
	MsgReset      uint8 = 0x05
	MsgPause      uint8 = 0x06
	MsgAssist     uint8 = 0x07
	MsgResetStats uint8 = 0x08
	MsgResize     uint8 = 0x09
	MsgCancel     uint8 = 0x0A
)

// Server -> Client message types
const (
	MsgState   uint8 = 0x81
	MsgWelcome uint8 = 0x82
	MsgOutcome uint8 = 0x84
	MsgImpact  uint8 = 0x85
	MsgPong    uint8 = 0x86
)

type Message struct {
	Type    uint8           `json:"type"`
	Tick    uint32          `json:"tick"`
	Payload json.RawMessage `json:"payload"`
}

// PointPayload carries a pointer position in arena units (press and aim).
type PointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PausePayload struct {
	Paused bool `json:"paused"`
}

type AssistPayload struct {
	Forgiveness float64 `json:"forgiveness"`
	LowerBucket bool    `json:"lowerBucket"`
	TargetScale float64 `json:"targetScale"`
}

type ResizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type PingPayload struct {
	ClientTime uint64 `json:"clientTime"`
}

type PongPayload struct {
	ClientTime uint64 `json:"clientTime"`
	ServerTime uint64 `json:"serverTime"`
}

type WelcomePayload struct {
	Nickname string `json:"nickname"`
	Best     int    `json:"best"`
	Lifetime int    `json:"lifetime"`
}

// ImpactPayload reports a bounce. Intensity is the 0..1 loudness a client should use.
type ImpactPayload struct {
	Surface   string  `json:"surface"`
	Speed     float64 `json:"speed"`
	Intensity float64 `json:"intensity"`
}

type OutcomePayload struct {
	Success  bool   `json:"success"`
	Reason   string `json:"reason"`
	Streak   int    `json:"streak"`
	Best     int    `json:"best"`
	Lifetime int    `json:"lifetime"`
	Hot      bool   `json:"hot"`
}

func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}

// DecodeInput parses a message from a client. Only client message types are accepted.
func DecodeInput(data []byte) (Message, error) {
	msg, err := Decode(data)
	if err != nil {
		return Message{}, err
	}
	if msg.Type < MsgPress || msg.Type > MsgCancel {
		return Message{}, fmt.Errorf("decode message: %w %#x", ErrUnknownType, msg.Type)
	}
	return msg, nil
}

func NewMessage(typ uint8, tick uint32, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Type:    typ,
		Tick:    tick,
		Payload: json.RawMessage(data),
	}, nil
}
