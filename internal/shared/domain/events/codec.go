package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrDecode marca payloads con etiqueta conocida que no cumplen su esquema.
var ErrDecode = errors.New("event decode error")

// DecodeError no es reintentable: el mismo payload fallará siempre igual.
type DecodeError struct {
	Tag   string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Tag, e.Cause)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Cause}
}

type decodeFunc func(payload []byte) (Event, error)

// Registry es el mapeo total etiqueta -> constructor de variante.
var Registry = map[string]decodeFunc{
	string(TypeVisitorStarted):    decodeAs[VisitorStarted],
	string(TypeCustomerStarted):   decodeAs[CustomerStarted],
	string(TypeShopperIdentified): decodeAs[ShopperIdentified],
	string(TypeItemAdded):         decodeItemAdded,
	string(TypeItemRemoved):       decodeAs[ItemRemoved],
	string(TypeCheckedOut):        decodeAs[CheckedOut],
	string(TypeAbandoned):         decodeAs[Abandoned],
	string(TypeOrderPlaced):       decodeOrderPlaced,
}

var validate = validator.New()

// Known indica si la etiqueta tiene variante registrada.
func Known(tag string) bool {
	_, ok := Registry[tag]
	return ok
}

// Decode convierte un envelope crudo en un evento de dominio.
// Una etiqueta desconocida devuelve Ignored y nunca error.
func Decode(tag string, payload []byte) (Event, error) {
	decode, ok := Registry[tag]
	if !ok {
		return Ignored{Tag: tag}, nil
	}
	evt, err := decode(payload)
	if err != nil {
		return nil, &DecodeError{Tag: tag, Cause: err}
	}
	return evt, nil
}

// DecodeEnvelope es un atajo para Decode(env.Type, env.Payload).
func DecodeEnvelope(env Envelope) (Event, error) {
	return Decode(env.Type, env.Payload)
}

func decodeAs[T Event](payload []byte) (Event, error) {
	evt, err := unmarshalStrict[T](payload)
	if err != nil {
		return nil, err
	}
	return evt, nil
}

func unmarshalStrict[T any](payload []byte) (T, error) {
	var evt T
	if len(bytes.TrimSpace(payload)) == 0 {
		return evt, errors.New("empty payload")
	}
	if err := json.Unmarshal(payload, &evt); err != nil {
		return evt, err
	}
	if err := validate.Struct(evt); err != nil {
		return evt, err
	}
	return evt, nil
}

func decodeItemAdded(payload []byte) (Event, error) {
	evt, err := unmarshalStrict[ItemAdded](payload)
	if err != nil {
		return nil, err
	}
	if evt.Price.Currency == "" {
		evt.Price.Currency = evt.Currency
	}
	evt.Currency = evt.Price.Currency
	return evt, nil
}

func decodeOrderPlaced(payload []byte) (Event, error) {
	evt, err := unmarshalStrict[OrderPlaced](payload)
	if err != nil {
		return nil, err
	}
	for i := range evt.LineItems {
		li := &evt.LineItems[i]
		if li.Price.Currency == "" {
			li.Price.Currency = li.Currency
		}
		li.Currency = li.Price.Currency
	}
	return evt, nil
}
