package json

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encode : 한 줄 JSON (HTML 이스케이프 없음, 끝 개행 제거)
func Encode[T any](value T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode : 모르는 필드가 있으면 에러
func Decode[T any](data []byte) (T, error) {
	var result T
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&result); err != nil {
		return result, fmt.Errorf("decode %T: %w", result, err)
	}
	return result, nil
}
