package offerform

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode reads the JSON record of the given kind, rejecting unknown fields.
func Decode(kind Kind, data []byte) (Values, error) {
	var v Values
	switch kind {
	case KindInformations:
		var x Informations
		if err := strictUnmarshal(data, &x); err != nil {
			return nil, err
		}
		v = x
	case KindTarifs:
		var x Tarifs
		if err := strictUnmarshal(data, &x); err != nil {
			return nil, err
		}
		v = x
	case KindStocksThing:
		var x StocksThing
		if err := strictUnmarshal(data, &x); err != nil {
			return nil, err
		}
		v = x
	case KindStocksEvent:
		var x StocksEvent
		if err := strictUnmarshal(data, &x); err != nil {
			return nil, err
		}
		v = x
	case KindSummary:
		v = Summary{}
	default:
		return nil, fmt.Errorf("unknown form kind %q", kind)
	}
	return v, nil
}

func strictUnmarshal(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
