package scraper

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
)

// jsonProgram sections copied into the program text, in output order
var textFields = []string{"about", "career", "social", "foreign", "achievements", "faq"}

// renders the human-readable program description that the corpus is
// built from. sections are separated by blank lines so the paragraph
// splitter sees each heading and entry on its own.
func RenderProgramText(nextData string, program corpus.Program) string {
	apiProgram := gjson.Get(nextData, "props.pageProps.apiProgram")
	jsonProgram := gjson.Get(nextData, "props.pageProps.jsonProgram")

	var lines []string

	title := program.String()
	if t := apiProgram.Get("title"); truthy(t) {
		title = display(t)
	} else if t := jsonProgram.Get("title"); truthy(t) {
		title = display(t)
	}

	lines = append(lines, fmt.Sprintf("Название программы: %s\n", title))

	for _, field := range textFields {
		content := jsonProgram.Get(field)
		if !truthy(content) {
			continue
		}

		lines = append(lines, fmt.Sprintf("--- %s ---\n", strings.ToUpper(field)))

		switch {
		case content.IsArray():
			for _, item := range content.Array() {
				if item.IsObject() {
					question := firstTruthy(item, "question", "title")
					answer := firstTruthy(item, "answer", "text")
					lines = append(lines, fmt.Sprintf("Вопрос: %s\nОтвет: %s\n", question, answer))

					continue
				}

				lines = append(lines, display(item)+"\n")
			}
		case content.IsObject():
			content.ForEach(func(key, value gjson.Result) bool {
				lines = append(lines, fmt.Sprintf("%s: %s", key.String(), display(value)))
				return true
			})

			lines = append(lines, "")
		default:
			lines = append(lines, display(content)+"\n")
		}
	}

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

func firstTruthy(obj gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := obj.Get(key); truthy(v) {
			return display(v)
		}
	}

	return ""
}

// empty strings, zero, false, null and empty containers count as absent
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		if r.IsArray() {
			return len(r.Array()) > 0
		}

		empty := true
		r.ForEach(func(_, _ gjson.Result) bool {
			empty = false
			return false
		})

		return !empty
	default:
		return false
	}
}

func display(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.True:
		return "True"
	case gjson.False:
		return "False"
	case gjson.Null:
		return "None"
	default:
		return r.Raw
	}
}
