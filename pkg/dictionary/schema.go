package dictionary

import (
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const dictionarySchema = `{
  "type": "object",
  "additionalProperties": { "type": "string" }
}`

var compiledSchema = sync.OnceValue(func() *jsonschema.Schema {
	return jsonschema.MustCompileString("dictionary.schema.json", dictionarySchema)
})

// validateJSON checks that data is a single JSON object of string values.
func validateJSON(data []byte) error {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return err
	}
	return compiledSchema().Validate(instance)
}
