package server

import (
	"encoding/json"
	"errors"
)

var (
	errAuthRequired = errors.New("authentication required")
	errForbidden    = errors.New("access denied for this role")
)

type Error struct {
	Err string `json:"error"`
}

func (se Error) ToJSON() []byte {
	b, err := json.Marshal(se)
	if err != nil {
		se.Err = err.Error()

		b, err := json.Marshal(se)
		if err != nil {
			return []byte(`{
				"error": "marshal error"
			  }`)
		}

		return b
	}

	return b
}
