package gemini

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
)

const chatPersona = `Você é o Finny, um assistente financeiro pessoal amigável e objetivo.
Responda sempre em português do Brasil, de forma curta e prática.
Use apenas os dados financeiros fornecidos abaixo; se algo não estiver nos dados, diga que não sabe.
Nunca invente valores, transações ou categorias.`

const noFinancialData = "Nenhum dado financeiro do usuário está disponível no momento."

const extractionFormat = `Responda SOMENTE com um objeto JSON, sem texto adicional, no formato:
{"name": string, "amount": number, "date": "YYYY-MM-DD", "type": "income" | "expense", "description": string, "categoryName": string}
Use ponto como separador decimal em "amount" e não inclua símbolo de moeda.
Se não conseguir identificar a data, use a data de hoje.`

const receiptPrompt = `Você extrai dados de comprovantes, notas fiscais e recibos.
Identifique o estabelecimento, o valor total pago, a data da compra e uma categoria provável.
Compras são sempre "expense".
` + extractionFormat

const transactionPrompt = `Você transforma uma frase falada sobre dinheiro em uma transação.
Identifique o que foi comprado ou recebido, o valor, a data mencionada e uma categoria provável.
Use "income" apenas quando o usuário disser que recebeu dinheiro; caso contrário use "expense".
` + extractionFormat

// task instructions, sent as the last content part
const (
	imageChatTask         = "Analise esta imagem e comente as informações financeiras relevantes."
	audioChatTask         = "Ouça esta mensagem de voz e responda ao usuário."
	receiptExtractionTask = "Extraia a transação deste comprovante."
	audioExtractionTask   = "Extraia a transação descrita neste áudio."
)

// chatInstruction interpolates today's date and the financial context.
func chatInstruction(now time.Time, fctx *finance.Context) string {
	var b strings.Builder

	b.WriteString(chatPersona)
	fmt.Fprintf(&b, "\n\nData de hoje: %s.", now.Format(time.DateOnly))

	text := fctx.Text()
	if text == "" {
		b.WriteString("\n\n" + noFinancialData)
		return b.String()
	}

	b.WriteString("\n\nDados financeiros do usuário:\n")
	b.WriteString(text)

	if fctx.Partial() {
		b.WriteString("\n\nAlguns dados não puderam ser carregados; avise o usuário se a pergunta depender deles.")
	}

	return b.String()
}

func extractionInstruction(prompt string, now time.Time) string {
	return fmt.Sprintf("%s\nData de hoje: %s.", prompt, now.Format(time.DateOnly))
}
