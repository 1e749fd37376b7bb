package judge

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildSubmissionPrompt asks the model for a JSON verdict on one test answer.
func (pb *PromptBuilder) BuildSubmissionPrompt(sub Submission) string {
	rubric := strings.TrimSpace(sub.Rubric)
	if rubric == "" {
		rubric = "Avalie correção jurídica, qualidade da fundamentação e adequação formal da peça."
	}

	return fmt.Sprintf(`Você é um avaliador jurídico sênior revisando a resposta de um candidato a prestador de serviços na área de %s.

ENUNCIADO DO TESTE:
%s

CRITÉRIOS DE AVALIAÇÃO:
%s

RESPOSTA DO CANDIDATO:
%s

Avalie a resposta nas três dimensões abaixo, cada uma de 0 a 100:
1. technical - domínio técnico e correção jurídica
2. argumentation - clareza e solidez da argumentação
3. formatting - estrutura, linguagem e adequação formal

Responda somente com JSON no formato:
{
  "technical": <0-100>,
  "argumentation": <0-100>,
  "formatting": <0-100>,
  "feedback": "<3 a 5 frases de feedback objetivo>",
  "strengths": ["<ponto forte>"],
  "improvements": ["<ponto a melhorar>"],
  "recommendations": ["<recomendação>"]
}`,
		sub.LegalArea, strings.TrimSpace(sub.Question), rubric, strings.TrimSpace(sub.Answer))
}

// extractJSON strips markdown fences and surrounding prose from a model reply.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")
	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	startArr := strings.Index(text, "[")
	endArr := strings.LastIndex(text, "]")
	if startArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}
