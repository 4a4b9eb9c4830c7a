package analysis

import (
	"fmt"
	"strings"
	"text/template"
)

const textPromptSource = `당신은 AI 연구 동향을 소개하는 큐레이터입니다. 아래는 오늘 Hugging Face에서 가장 주목받은 논문들입니다.

{{.Papers}}

각 논문을 한국어로 소개해 주세요. 규칙:
- 첫 줄에 오늘의 전체 흐름을 한두 문장으로 요약하세요.
- 논문마다 "**[번호] 제목**" 형식으로 시작하세요. 번호는 위 목록의 순서를 따릅니다.
- 논문마다 핵심 아이디어와 의의를 3~4문장으로 설명하세요.
- 논문마다 마지막 줄에 "[논문 보기]"를 그대로 적으세요. 링크로 바뀝니다.`

const structuredPromptSource = `다음 논문을 분석해 주세요.

제목: {{.Title}}
저자: {{.Authors}}
초록: {{.Abstract}}

아래 JSON 객체 하나만 출력하세요. 다른 설명은 쓰지 마세요.
{
  "titleKo": "제목의 자연스러운 한국어 번역",
  "summary": "3~4문장 한국어 요약",
  "keyPoints": ["핵심 포인트 1", "핵심 포인트 2", "핵심 포인트 3"],
  "significance": "이 연구의 의의 한 문장",
  "eliFor5": "초등학생도 이해할 수 있는 한 문장 설명"
}`

const batchPromptSource = `다음은 오늘의 인기 논문 목록입니다.

{{.Papers}}

각 논문을 목록 순서대로 분석해 JSON 배열 하나만 출력하세요. 배열의 i번째 원소는 i번째 논문에 대한 분석입니다. 다른 설명은 쓰지 마세요.
[
  {
    "titleKo": "제목의 자연스러운 한국어 번역",
    "summary": "3~4문장 한국어 요약",
    "keyPoints": ["핵심 포인트 1", "핵심 포인트 2", "핵심 포인트 3"],
    "significance": "이 연구의 의의 한 문장",
    "eliFor5": "초등학생도 이해할 수 있는 한 문장 설명"
  }
]`

var (
	textPrompt       = template.Must(template.New("text").Parse(textPromptSource))
	structuredPrompt = template.Must(template.New("structured").Parse(structuredPromptSource))
	batchPrompt      = template.Must(template.New("batch").Parse(batchPromptSource))
)

type papersVars struct {
	Papers string
}

type paperVars struct {
	Title    string
	Authors  string
	Abstract string
}

func render(tmpl *template.Template, vars any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}
