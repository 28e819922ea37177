package database

import "gopkg.in/yaml.v3"

func marshalEntry(e Entry) ([]byte, error) {
	return yaml.Marshal(e)
}
