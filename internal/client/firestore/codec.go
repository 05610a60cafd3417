package firestore

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// encodeFields converts plain values to typed wire fields.
func encodeFields(fields map[string]any) (map[string]wireValue, error) {
	result := make(map[string]wireValue, len(fields))

	for name, value := range fields {
		encoded, err := encodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}

		result[name] = encoded
	}

	return result, nil
}

//nolint:cyclop // One case per supported Go type.
func encodeValue(value any) (wireValue, error) {
	switch typed := value.(type) {
	case nil:
		return wireValue{kindNull: json.RawMessage("null")}, nil
	case bool:
		return newWireValue(kindBoolean, typed)
	case string:
		return newWireValue(kindString, typed)
	case json.Number:
		return encodeNumber(typed)
	case float64:
		return encodeFloat(typed)
	case float32:
		return encodeFloat(float64(typed))
	case int:
		return newWireValue(kindInteger, strconv.Itoa(typed))
	case int64:
		return newWireValue(kindInteger, strconv.FormatInt(typed, 10))
	case int32:
		return newWireValue(kindInteger, strconv.FormatInt(int64(typed), 10))
	case []any:
		values := make([]wireValue, 0, len(typed))

		for i, item := range typed {
			encoded, err := encodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}

			values = append(values, encoded)
		}

		return newWireValue(kindArray, wireArray{Values: values})
	case map[string]any:
		fields, err := encodeFields(typed)
		if err != nil {
			return nil, err
		}

		return newWireValue(kindMap, wireMap{Fields: fields})
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, value)
	}
}

func encodeNumber(number json.Number) (wireValue, error) {
	if integer, err := strconv.ParseInt(number.String(), 10, 64); err == nil {
		return newWireValue(kindInteger, strconv.FormatInt(integer, 10))
	}

	float, err := number.Float64()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	return encodeFloat(float)
}

// encodeFloat stores integral floats within the safe integer range as integers.
func encodeFloat(float float64) (wireValue, error) {
	if math.IsNaN(float) || math.IsInf(float, 0) {
		return nil, fmt.Errorf("%w: non-finite number", ErrInvalidValue)
	}

	if float == math.Trunc(float) && math.Abs(float) <= maxSafeInteger {
		return newWireValue(kindInteger, strconv.FormatInt(int64(float), 10))
	}

	return newWireValue(kindDouble, float)
}

func newWireValue(kind string, payload any) (wireValue, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	return wireValue{kind: raw}, nil
}

// decodeFields converts typed wire fields to plain values.
// A document without fields decodes to an empty map.
func decodeFields(fields map[string]wireValue) (map[string]any, error) {
	result := make(map[string]any, len(fields))

	for name, value := range fields {
		decoded, err := decodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}

		result[name] = decoded
	}

	return result, nil
}

//nolint:cyclop,funlen // One case per wire kind.
func decodeValue(value wireValue) (any, error) {
	if len(value) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one kind, got %d", ErrInvalidValue, len(value))
	}

	for kind, raw := range value {
		switch kind {
		case kindNull:
			return nil, nil
		case kindBoolean:
			var result bool
			if err := unmarshalPayload(raw, &result); err != nil {
				return nil, err
			}

			return result, nil
		case kindInteger:
			text, err := integerText(raw)
			if err != nil {
				return nil, err
			}

			return json.Number(text), nil
		case kindDouble:
			var result float64
			if err := unmarshalPayload(raw, &result); err != nil {
				return nil, err
			}

			return json.Number(strconv.FormatFloat(result, 'g', -1, 64)), nil
		case kindString, kindTimestamp, kindBytes, kindReference:
			var result string
			if err := unmarshalPayload(raw, &result); err != nil {
				return nil, err
			}

			return result, nil
		case kindGeoPoint:
			var point wireGeoPoint
			if err := unmarshalPayload(raw, &point); err != nil {
				return nil, err
			}

			return map[string]any{"latitude": point.Latitude, "longitude": point.Longitude}, nil
		case kindArray:
			var array wireArray
			if err := unmarshalPayload(raw, &array); err != nil {
				return nil, err
			}

			result := make([]any, 0, len(array.Values))

			for i, item := range array.Values {
				decoded, err := decodeValue(item)
				if err != nil {
					return nil, fmt.Errorf("index %d: %w", i, err)
				}

				result = append(result, decoded)
			}

			return result, nil
		case kindMap:
			var nested wireMap
			if err := unmarshalPayload(raw, &nested); err != nil {
				return nil, err
			}

			return decodeFields(nested.Fields)
		default:
			return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidValue, kind)
		}
	}

	return nil, nil
}

// integerText accepts integers encoded either as strings or as bare numbers.
func integerText(raw json.RawMessage) (string, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var number json.Number
		if err = json.Unmarshal(raw, &number); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}

		text = number.String()
	}

	if _, err := strconv.ParseInt(text, 10, 64); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	return text, nil
}

func unmarshalPayload(raw json.RawMessage, target any) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	return nil
}
