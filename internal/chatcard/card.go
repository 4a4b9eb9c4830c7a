// Package chatcard renders analysis results into Google Chat card payloads.
package chatcard

import (
	"bytes"
	"encoding/json"
)

// Message is the webhook body.
type Message struct {
	Text  string `json:"text,omitempty"`
	Cards []Card `json:"cards,omitempty"`
}

// Card is one card with an optional header and ordered sections.
type Card struct {
	Header   *Header   `json:"header,omitempty"`
	Sections []Section `json:"sections"`
}

// Header is the card title block.
type Header struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// Section groups widgets.
type Section struct {
	Widgets []Widget `json:"widgets"`
}

// Widget holds exactly one of a text paragraph or a button row.
type Widget struct {
	TextParagraph *TextParagraph `json:"textParagraph,omitempty"`
	Buttons       []Button       `json:"buttons,omitempty"`
}

// TextParagraph accepts the limited HTML subset Chat renders.
type TextParagraph struct {
	Text string `json:"text"`
}

type Button struct {
	TextButton TextButton `json:"textButton"`
}

type TextButton struct {
	Text    string  `json:"text"`
	OnClick OnClick `json:"onClick"`
}

type OnClick struct {
	OpenLink OpenLink `json:"openLink"`
}

type OpenLink struct {
	URL string `json:"url"`
}

func textSection(text string) Section {
	return Section{Widgets: []Widget{{TextParagraph: &TextParagraph{Text: text}}}}
}

func linkSection(label, url string) Section {
	return Section{Widgets: []Widget{{
		Buttons: []Button{{TextButton: TextButton{
			Text:    label,
			OnClick: OnClick{OpenLink: OpenLink{URL: url}},
		}}},
	}}}
}

// Encode serializes msg without HTML escaping so card markup reaches Chat verbatim.
func Encode(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
