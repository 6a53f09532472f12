package statementmsgpack

import (
	"io"

	"github.com/sanity-io/statement"
	"github.com/vmihailenco/msgpack/v4"
)

// MsgpackMutations is an alias for statement.Mutations which implements CustomEncoder/CustomDecoder.
// You should only use this if you need to embed a plan inside a larger msgpack structure.
// Otherwise it's preferred to use the Marshal and Unmarshal functions.
type MsgpackMutations statement.Mutations

var _ msgpack.CustomEncoder = (*MsgpackMutations)(nil)
var _ msgpack.CustomDecoder = (*MsgpackMutations)(nil)

// Marshal encodes a plan using Msgpack.
func Marshal(mutations statement.Mutations) ([]byte, error) {
	mp := MsgpackMutations(mutations)
	return msgpack.Marshal(&mp)
}

// Unmarshal decodes a plan using Msgpack.
func Unmarshal(data []byte) (statement.Mutations, error) {
	var mp MsgpackMutations
	err := msgpack.Unmarshal(data, &mp)
	if err != nil {
		return nil, err
	}
	return statement.Mutations(mp), nil
}

// MarshalStatement encodes an update statement in the same shape as its JSON form.
func MarshalStatement(s statement.UpdateStatement) ([]byte, error) {
	return msgpack.Marshal(s.Value())
}

type writer struct {
	*msgpack.Encoder
}

func (w writer) WriteUint8(v uint8) error {
	return w.EncodeUint8(v)
}

func (w writer) WriteUint(v int) error {
	return w.EncodeUint(uint64(v))
}

func (w writer) WriteString(v string) error {
	return w.EncodeString(v)
}

func (w writer) WriteValue(v interface{}) error {
	return w.Encode(v)
}

func (mp *MsgpackMutations) EncodeMsgpack(enc *msgpack.Encoder) error {
	return statement.Mutations(*mp).WriteTo(writer{enc})
}

type reader struct {
	*msgpack.Decoder
}

func (r reader) ReadUint8() (uint8, error) {
	return r.DecodeUint8()
}

func (r reader) ReadUint() (int, error) {
	val, err := r.DecodeUint()
	return int(val), err
}

func (r reader) ReadString() (string, error) {
	return r.DecodeString()
}

func (r reader) ReadValue() (interface{}, error) {
	var result interface{}
	err := r.Decode(&result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (mp *MsgpackMutations) DecodeMsgpack(dec *msgpack.Decoder) error {
	r := reader{dec}

	for {
		m, err := statement.ReadFrom(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		*mp = append(*mp, m)
	}
}
