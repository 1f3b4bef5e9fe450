package state

import (
	"encoding/json"
	"errors"
)

// ErrUnknownOp is returned for operations of an unrecognized kind.
var ErrUnknownOp = errors.New("unknown operation")

// OpKind names a store operation.
type OpKind string

const (
	OpSetRoot      OpKind = "set_root"
	OpPutObject    OpKind = "put_object"
	OpSetFields    OpKind = "set_fields"
	OpDeleteObject OpKind = "delete_object"
	OpListInsert   OpKind = "list_insert"
	OpListDelete   OpKind = "list_delete"
)

// Fields maps a field name to its JSON value.
type Fields map[string]json.RawMessage

// Op is one write. Target names the root register, map or list written to;
// Key is the object or element id inside it.
type Op struct {
	Kind   OpKind          `json:"kind"`
	Target string          `json:"target"`
	Key    string          `json:"key,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
	Fields Fields          `json:"fields,omitempty"`
	Pos    *Stamp          `json:"pos,omitempty"`
	Stamp  Stamp           `json:"stamp"`
}

// Batch is the unit other participants observe: all of its ops apply
// together or not at all.
type Batch struct {
	ID   string `json:"id"`
	Site string `json:"site"`
	Ops  []Op   `json:"ops"`
}

// MessageType names a wire message.
type MessageType string

const (
	MsgHello    MessageType = "hello"
	MsgSync     MessageType = "sync"
	MsgOps      MessageType = "ops"
	MsgPresence MessageType = "presence"
	MsgLeave    MessageType = "leave"
)

// Message travels between participants. Hello and presence carry presence
// fields written at Stamp; sync and ops carry a batch.
type Message struct {
	Type     MessageType `json:"type"`
	Room     string      `json:"room,omitempty"`
	Site     string      `json:"site"`
	Batch    *Batch      `json:"batch,omitempty"`
	Presence Fields      `json:"presence,omitempty"`
	Stamp    Stamp       `json:"stamp"`
}

var null = json.RawMessage("null")
