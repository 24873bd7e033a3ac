// Package decode turns free-form provider text into validated, typed values.
// Every failure is reported as a ParseError or InvalidResponse ServiceError.
package decode

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"interviewassist/core/internal/models"
	"interviewassist/core/internal/resilience"
	"interviewassist/core/internal/utils"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var printer = message.NewPrinter(language.English)

var (
	questionsSchema  = mustCompileSchema("questions.schema.json")
	evaluationSchema = mustCompileSchema("evaluation.schema.json")
)

func mustCompileSchema(name string) *jsonschema.Schema {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("failed to read embedded %s: %v", name, err))
	}

	var schemaDoc any
	if err := json.Unmarshal(raw, &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

type rawQuestion struct {
	ID         any     `json:"id"`
	Question   string  `json:"question"`
	Difficulty string  `json:"difficulty"`
	TimeLimit  float64 `json:"timeLimit"`
}

type rawEvaluation struct {
	Score        float64  `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Questions decodes a generated question set. Items without an id get q<n>;
// the time limit is always the one implied by the difficulty.
func Questions(text string) ([]models.InterviewQuestion, error) {
	raw, doc, err := extract(text, '[')
	if err != nil {
		return nil, resilience.NewError(resilience.KindParseError, "Failed to parse AI response as JSON", err)
	}
	if err := validate(questionsSchema, doc); err != nil {
		return nil, resilience.NewError(resilience.KindInvalidResponse, "AI generated an invalid question set", err)
	}

	var items []rawQuestion
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, resilience.NewError(resilience.KindParseError, "Failed to parse AI response as JSON", err)
	}

	questions := make([]models.InterviewQuestion, 0, len(items))
	for i, item := range items {
		difficulty, err := models.ParseDifficulty(item.Difficulty)
		if err != nil {
			return nil, resilience.NewError(resilience.KindInvalidResponse,
				fmt.Sprintf("Invalid question structure at index %d", i), err)
		}
		questions = append(questions, models.InterviewQuestion{
			ID:         questionID(item.ID, i),
			Question:   strings.TrimSpace(item.Question),
			Difficulty: difficulty,
			TimeLimit:  difficulty.TimeLimit(),
		})
	}
	return questions, nil
}

// Evaluation decodes a scored answer, clamping the score to [0,100].
func Evaluation(text string) (*models.Evaluation, error) {
	raw, doc, err := extract(text, '{')
	if err != nil {
		return nil, resilience.NewError(resilience.KindParseError, "Failed to parse answer evaluation response", err)
	}
	if err := validate(evaluationSchema, doc); err != nil {
		return nil, resilience.NewError(resilience.KindInvalidResponse, "AI returned invalid evaluation structure", err)
	}

	var result rawEvaluation
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, resilience.NewError(resilience.KindParseError, "Failed to parse answer evaluation response", err)
	}

	return &models.Evaluation{
		Score:        models.ClampScore(result.Score),
		Feedback:     result.Feedback,
		Strengths:    result.Strengths,
		Improvements: result.Improvements,
	}, nil
}

func questionID(id any, index int) string {
	switch v := id.(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprintf("q%d", index+1)
}

// extract tries the whole text first, then the first substring starting at
// open that decodes as one complete JSON value.
func extract(text string, open byte) (json.RawMessage, any, error) {
	text = utils.StripFences(text)
	if text == "" {
		return nil, nil, errors.New("empty response")
	}

	doc, err := unmarshalStrict([]byte(text))
	if err == nil {
		return json.RawMessage(text), doc, nil
	}
	directErr := err

	for i := 0; i < len(text); i++ {
		if text[i] != open {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		doc, err := unmarshalStrict(raw)
		if err != nil {
			continue
		}
		return raw, doc, nil
	}
	return nil, nil, directErr
}

// unmarshalStrict decodes exactly one JSON value, keeping numbers as
// json.Number for the schema validator.
func unmarshalStrict(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return doc, nil
}

func validate(schema *jsonschema.Schema, doc any) error {
	err := schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	var problems []string
	collectSchemaErrors(ve, &problems)
	return errors.New(strings.Join(problems, "; "))
}

func collectSchemaErrors(ve *jsonschema.ValidationError, problems *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*problems = append(*problems, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(printer)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, problems)
	}
}
