package utils

import (
	"bytes"
	stdjson "encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PrettyJson indenta com tabs; []byte é tratado como JSON já serializado
func PrettyJson(in any) string {
	raw, ok := in.([]byte)
	if !ok {
		var err error
		if raw, err = json.Marshal(in); err != nil {
			return ""
		}
	}

	// o MarshalIndent do jsoniter só aceita espaços
	var out bytes.Buffer
	if err := stdjson.Indent(&out, raw, "", "\t"); err != nil {
		return string(raw)
	}

	return out.String()
}
