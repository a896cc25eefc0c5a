package manifest

import (
	"encoding/gob"
	"os"
)

// The manifest cache avoids re-evaluating bindings.star on every build
// invocation with the same option set.

func WriteCache(file string, options map[string]string, m *Manifest) error {
	handle, err := os.Create(file)
	if err != nil {
		return err
	}
	defer handle.Close()

	encoder := gob.NewEncoder(handle)
	err = encoder.Encode(options)
	if err != nil {
		return err
	}

	return encoder.Encode(m)
}

func ReadCache(file string) (map[string]string, *Manifest, error) {
	handle, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	defer handle.Close()

	decoder := gob.NewDecoder(handle)

	var options map[string]string
	err = decoder.Decode(&options)
	if err != nil {
		return nil, nil, err
	}

	result := new(Manifest)
	err = decoder.Decode(result)
	if err != nil {
		return options, nil, err
	}

	return options, result, nil
}
