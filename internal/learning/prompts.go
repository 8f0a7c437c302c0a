package learning

import (
	"fmt"
	"strings"

	"github.com/gastobot/gastobot/internal/model"
)

// Message builders for the confirmation dialogue. This core only produces
// text; the platform adapters own delivery and framing.

func describeSuggestion(category, subCategory string) string {
	if subCategory != "" {
		return category + " > " + subCategory
	}
	return category
}

func confirmationPrompt(lc *model.LearningContext) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Ainda não conheço %q. ", lc.DetectedTerm)

	if lc.HasOutrosCategory {
		fmt.Fprintf(&sb, "Parece ser %s.\n\n",
			describeSuggestion(lc.SuggestedCategory, lc.SuggestedSubCategory))
		sb.WriteString("1️⃣ Sim, é isso\n")
		sb.WriteString("2️⃣ Não, quero corrigir\n")
		sb.WriteString("3️⃣ Cancelar")
		return sb.String()
	}

	// Without a generic fallback category there is nothing safe to
	// confirm, so only correction and cancel are offered.
	sb.WriteString("Me diga a categoria certa para aprender.\n\n")
	sb.WriteString("1️⃣ Informar a categoria\n")
	sb.WriteString("2️⃣ Cancelar")
	return sb.String()
}

func correctionPrompt(term string) string {
	return fmt.Sprintf(
		"Qual é a categoria certa para %q? Responda com o nome, por exemplo: Alimentação > Delivery",
		term)
}

func categoryListPrompt(term string, categories []model.UserCategory) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Não encontrei nenhuma categoria parecida para %q. Estas são as suas categorias:\n", term)

	seen := make(map[string]struct{})
	for i := range categories {
		label := describeSuggestion(categories[i].Name, "")
		if categories[i].SubCategory != nil {
			label = describeSuggestion(categories[i].Name, categories[i].SubCategory.Name)
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		fmt.Fprintf(&sb, "• %s\n", label)
	}

	sb.WriteString("\nResponda com o nome da categoria.")
	return sb.String()
}

func selectionPrompt(matches []model.CategoryMatch) string {
	var sb strings.Builder

	sb.WriteString("Encontrei mais de uma opção. Qual delas?\n")
	for i, m := range matches {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, describeSuggestion(m.CategoryName, m.SubCategoryName))
	}
	sb.WriteString("\nResponda com o número da opção.")
	return sb.String()
}

func learnedMessage(term, category, subCategory string) string {
	return fmt.Sprintf("Anotado! %q agora é %s. 👍",
		term, describeSuggestion(category, subCategory))
}

func acknowledgedMessage(category, subCategory string) string {
	return fmt.Sprintf("Combinado, vou usar %s.",
		describeSuggestion(category, subCategory))
}

func cancelledMessage() string {
	return "Tudo bem, deixei essa de lado."
}

func selectionRangeMessage(n int) string {
	return fmt.Sprintf("Escolha um número entre 1 e %d.", n)
}
