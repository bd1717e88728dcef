package jsonval

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrTrailingData is returned by Decode when the input contains more than
// one top-level JSON value.
var ErrTrailingData = errors.New("jsonval: trailing data after JSON value")

// Decode reads exactly one top-level JSON value from r.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}

	// Confirm there is nothing else but whitespace left.
	if _, err := dec.Token(); err != io.EOF { //nolint:errorlint // io.EOF is a sentinel, not wrapped.
		if err == nil {
			return Value{}, ErrTrailingData
		}

		return Value{}, fmt.Errorf("jsonval: reading trailing tokens: %w", err)
	}

	return v, nil
}

// DecodeAll reads a stream of whitespace-separated top-level JSON values
// from r (e.g. one JSON document per line, or a sequence of JSON documents
// back to back), returning one Value per document.
func DecodeAll(r io.Reader) ([]Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var values []Value

	for {
		v, err := decodeValue(dec)
		if errors.Is(err, io.EOF) {
			return values, nil
		}

		if err != nil {
			return values, err
		}

		values = append(values, v)
	}
}

// decodeValue reads exactly one JSON value's worth of tokens from dec.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	case string:
		return Value{Kind: KindString, Str: t}, nil
	case json.Number:
		n, err := parseNumber(t)
		if err != nil {
			return Value{}, fmt.Errorf("jsonval: %w", err)
		}

		return Value{Kind: KindNumber, Num: n}, nil
	case json.Delim:
		switch t {
		case '[':
			return decodeArray(dec)
		case '{':
			return decodeObject(dec)
		default:
			return Value{}, fmt.Errorf("jsonval: unexpected delimiter %q", t)
		}
	default:
		return Value{}, fmt.Errorf("jsonval: unexpected token %T", tok)
	}
}

func decodeArray(dec *json.Decoder) (Value, error) {
	v := Value{Kind: KindArray}

	for dec.More() {
		elem, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}

		v.Arr = append(v.Arr, elem)
	}

	// Consume the closing ']'.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return v, nil
}

func decodeObject(dec *json.Decoder) (Value, error) {
	v := Value{Kind: KindObject}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}

		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("jsonval: object key is not a string: %T", keyTok)
		}

		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}

		v.Obj = append(v.Obj, Member{Key: key, Value: val})
	}

	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return v, nil
}

// parseNumber classifies a decoded json.Number's literal text. Numbers that
// parse cleanly as a signed 64-bit integer (no fractional part, no
// exponent, in range) are integral; everything else (fractional, exponent
// form, or out-of-int64-range integers) is real-valued.
func parseNumber(n json.Number) (Number, error) {
	s := n.String()

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Number{IsInt: true, Int: i, Float: float64(i)}, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// strconv.ParseFloat only fails this way on out-of-range magnitudes
		// (it still returns +/-Inf); genuine syntax errors can't reach here
		// since json.Number is already lexically validated by the decoder.
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return Number{Float: f}, nil
		}

		return Number{}, fmt.Errorf("invalid number literal %q: %w", s, err)
	}

	return Number{Float: f}, nil
}
