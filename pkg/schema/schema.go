package schema

import "github.com/hamba/avro/v2"

type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

type serde struct {
	encode func(v any) ([]byte, error)
	decode func([]byte, any) error
}

func (s serde) Encode(v any) ([]byte, error) {
	return s.encode(v)
}

func (s serde) Decode(data []byte, v any) error {
	return s.decode(data, v)
}

// NewSerde returns an avro Serde bound to s.
func NewSerde(s avro.Schema) Serde {
	return serde{encode: AvroEncodeFn(s), decode: AvroDecodeFn(s)}
}

// NewCatalogSerdeV1 returns the Serde of CatalogV1 values.
func NewCatalogSerdeV1() Serde {
	return NewSerde(CatalogV1Avro())
}

func AvroEncodeFn(s avro.Schema) func(v any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		return avro.Marshal(s, v)
	}
}

func AvroDecodeFn(s avro.Schema) func([]byte, any) error {
	return func(data []byte, v any) error {
		return avro.Unmarshal(s, data, v)
	}
}
