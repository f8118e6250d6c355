package generator

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

//go:embed study.schema.json
var studySchemaJSON []byte

var (
	studySchema   = mustCompileSchema(studySchemaJSON, "study.schema.json")
	schemaPrinter = message.NewPrinter(language.English)
)

func mustCompileSchema(raw []byte, name string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ParseStudy reads a YAML or JSON study document, checks it against the study
// schema and returns the normalized, validated Study.
func ParseStudy(data []byte) (Study, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Study{}, configError("", "parse study: %v", err)
	}
	return DecodeStudy(doc)
}

// DecodeStudy validates a generic document (decoded JSON or YAML) and maps it onto a Study.
func DecodeStudy(doc any) (Study, error) {
	if problems := schemaProblems(doc); len(problems) > 0 {
		return Study{}, &ConfigurationError{Problems: problems}
	}

	var s Study
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "mapstructure",
		ErrorUnused: true,
		Result:      &s,
	})
	if err != nil {
		return Study{}, err
	}
	if err := dec.Decode(doc); err != nil {
		return Study{}, configError("", "decode study: %v", err)
	}

	s = s.Normalized()
	if err := s.Validate(); err != nil {
		return Study{}, err
	}
	return s, nil
}

func schemaProblems(doc any) []Problem {
	err := studySchema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []Problem{{Message: fmt.Sprintf("schema: %v", err)}}
	}
	var out []Problem
	collectSchemaProblems(ve, &out)
	return out
}

func collectSchemaProblems(ve *jsonschema.ValidationError, out *[]Problem) {
	if len(ve.Causes) == 0 {
		field := "/"
		if len(ve.InstanceLocation) > 0 {
			field = strings.Join(ve.InstanceLocation, ".")
		}
		*out = append(*out, Problem{Field: field, Message: ve.ErrorKind.LocalizedString(schemaPrinter)})
		return
	}
	for _, c := range ve.Causes {
		collectSchemaProblems(c, out)
	}
}
