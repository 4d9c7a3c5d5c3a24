package narrative

import (
	"fmt"
	"regexp"
	"strings"
)

const reportPrompt = `
Você é um analista de restaurantes. Gere um relatório curto e acionável para o restaurante {{restaurant_name}}.

Dados atuais:
- Top produtos: {{top_products}}
- Tempo médio de preparo geral: {{avg_prep}} seg
- Média histórica (30d): {{avg_prep_30d}} seg
- Alertas: {{alerts}}

Responda em JSON no formato:
{
  "title": "...",
  "summary": "...",
  "top_products": [...],
  "avg_prep": ...,
  "avg_prep_30d": ...,
  "alerts": [...],
  "recommendations": [...]
}
`

const anomaliesPrompt = `
Você é um analista de dados de restaurantes. Analise as métricas abaixo e liste, em marcadores curtos, quaisquer anomalias ou pontos de atenção.

Métricas:
{{metrics_data}}

Responda apenas com a lista de marcadores, um por linha.
`

const routerPrompt = `
Você é um roteador de intenções. Dada a mensagem do usuário, escolha a função mais adequada entre: "query_metrics", "query_clients_metrics", "detect_anomalies", "generate_report" ou nenhuma.

Mensagem do usuário: {{user_input}}

Responda apenas em JSON: {"plugin": "...", "function": "..."} ou {"plugin": null, "function": null}.
`

var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z0-9_]+)\}\}`)

// RenderPrompt substitutes {{key}} placeholders in the template. A template
// key without a matching value is an error: a placeholder silently left in
// the prompt text would be sent to the model as-is.
func RenderPrompt(template string, values map[string]any) (string, error) {
	rendered := template
	for key, value := range values {
		rendered = strings.ReplaceAll(rendered, "{{"+key+"}}", fmt.Sprint(value))
	}
	if missing := placeholderPattern.FindStringSubmatch(rendered); missing != nil {
		return "", fmt.Errorf("prompt template missing value for %q", missing[1])
	}
	return rendered, nil
}
