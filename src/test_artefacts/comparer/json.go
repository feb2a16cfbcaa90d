package comparer

import (
	"encoding/json"

	"github.com/google/go-cmp/cmp"
)

// EqualJSON compara dois documentos JSON ignorando a ordem das chaves.
func EqualJSON(x, y []byte) (bool, string) {
	var xObj, yObj any
	if err := json.Unmarshal(x, &xObj); err != nil {
		return false, err.Error()
	}
	if err := json.Unmarshal(y, &yObj); err != nil {
		return false, err.Error()
	}
	diff := cmp.Diff(xObj, yObj)
	return diff == "", diff
}
