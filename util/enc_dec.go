package util

import (
	"bytes"
	"encoding/json"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type EncoderDecoder[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (*T, error)
}

type JsonEncDec[T any] struct{}

var _ EncoderDecoder[any] = new(JsonEncDec[any])

func NewJsonEncoderDecoder[T any]() *JsonEncDec[T] {
	return &JsonEncDec[T]{}
}

func (encdec *JsonEncDec[T]) Encode(value T) ([]byte, error) {
	res, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Decode keeps untyped numbers as json.Number so integers above 2^53 survive.
func (encdec *JsonEncDec[T]) Decode(data []byte) (*T, error) {
	return decodeJson[T](data)
}

// ProtoEncDec stores the json form of a value in a google.protobuf.BytesValue.
type ProtoEncDec[T any] struct{}

var _ EncoderDecoder[any] = new(ProtoEncDec[any])

func NewProtoEncoderDecoder[T any]() *ProtoEncDec[T] {
	return &ProtoEncDec[T]{}
}

func (encdec *ProtoEncDec[T]) Encode(value T) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(wrapperspb.Bytes(data))
}

func (encdec *ProtoEncDec[T]) Decode(data []byte) (*T, error) {
	wrapped := &wrapperspb.BytesValue{}
	if err := proto.Unmarshal(data, wrapped); err != nil {
		return nil, err
	}
	return decodeJson[T](wrapped.GetValue())
}

func decodeJson[T any](data []byte) (*T, error) {
	var res T
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}
