package response

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Form is an HTML form as a browser would submit it.
type Form struct {
	Action  string
	Method  string // upper-cased, GET when absent
	Name    string
	ID      string
	Enctype string
	Fields  []Field
}

// Field is one named control of a form.
type Field struct {
	Name     string
	Type     string
	Value    string
	Checked  bool
	Disabled bool
	Options  []string // select option values
}

// Forms returns every form in the page, in document order.
func (r *Response) Forms() []Form {
	doc, err := r.Document()
	if err != nil {
		return nil
	}

	var forms []Form
	doc.Find("form").Each(func(_ int, s *goquery.Selection) {
		forms = append(forms, parseForm(s))
	})
	return forms
}

// Form returns the first form matching a CSS selector, or the first form
// of the page when selector is empty.
func (r *Response) Form(selector string) (Form, bool) {
	doc, err := r.Document()
	if err != nil {
		return Form{}, false
	}
	if selector == "" {
		selector = "form"
	}

	s := doc.Find(selector).First()
	if s.Length() == 0 || !s.Is("form") {
		return Form{}, false
	}
	return parseForm(s), true
}

func parseForm(form *goquery.Selection) Form {
	f := Form{
		Action:  strings.TrimSpace(form.AttrOr("action", "")),
		Method:  strings.ToUpper(form.AttrOr("method", "GET")),
		Name:    form.AttrOr("name", ""),
		ID:      form.AttrOr("id", ""),
		Enctype: form.AttrOr("enctype", "application/x-www-form-urlencoded"),
	}

	form.Find("input, textarea, select, button").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		if name == "" {
			return
		}
		_, checked := s.Attr("checked")
		_, disabled := s.Attr("disabled")

		field := Field{
			Name:     name,
			Type:     strings.ToLower(s.AttrOr("type", "text")),
			Value:    s.AttrOr("value", ""),
			Checked:  checked,
			Disabled: disabled,
		}

		switch {
		case s.Is("textarea"):
			field.Type = "textarea"
			field.Value = s.Text()
		case s.Is("select"):
			field.Type = "select"
			field.Value = ""
			s.Find("option").Each(func(i int, opt *goquery.Selection) {
				value := opt.AttrOr("value", strings.TrimSpace(opt.Text()))
				field.Options = append(field.Options, value)
				if _, selected := opt.Attr("selected"); selected || i == 0 {
					field.Value = value
				}
			})
		case s.Is("button"):
			field.Type = strings.ToLower(s.AttrOr("type", "submit"))
		}

		f.Fields = append(f.Fields, field)
	})
	return f
}

// Values returns the data a browser would submit without user input:
// enabled fields, checked boxes and radios only, no buttons. Repeated
// names collect into a list.
func (f Form) Values() map[string]any {
	values := make(map[string]any)
	for _, field := range f.Fields {
		if field.Disabled {
			continue
		}
		switch field.Type {
		case "submit", "button", "reset", "image", "file":
			continue
		case "checkbox", "radio":
			if !field.Checked {
				continue
			}
			if field.Value == "" {
				field.Value = "on"
			}
		}

		switch prev := values[field.Name].(type) {
		case nil:
			values[field.Name] = field.Value
		case string:
			values[field.Name] = []any{prev, field.Value}
		case []any:
			values[field.Name] = append(prev, field.Value)
		}
	}
	return values
}
