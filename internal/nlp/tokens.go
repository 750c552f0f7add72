package nlp

import (
	"regexp"
	"strings"
)

// Таблица удаления токенов для очистки заголовка. Правила применяются
// в объявленном порядке, затем отбрасываются одиночные стоп-слова.

type tokenRule struct {
	re   *regexp.Regexp
	repl string
}

var titleRules = []tokenRule{
	// точное время «15:00» / «15.00»
	{regexp.MustCompile(`\b\d{1,2}[:.][0-5]\d\b`), " "},
	// голый час после предлога: «в 9»
	{regexp.MustCompile(`(?i)(^|\s)в[ое]?\s+\d{1,2}(\s|$)`), " "},
}

var stopWords = map[string]struct{}{
	"в": {}, "во": {}, "на": {},
	"сегодня": {}, "завтра": {}, "послезавтра": {},
	"понедельник": {}, "вторник": {}, "среда": {}, "среду": {},
	"четверг": {}, "пятница": {}, "пятницу": {},
	"суббота": {}, "субботу": {}, "воскресенье": {},
	"утром": {}, "утра": {},
	"днём": {}, "днем": {}, "дня": {},
	"вечером": {}, "вечера": {},
	"ночью": {}, "ночи": {},
}

// CleanTitle удаляет из фразы распознанные токены времени и даты вместе
// со стоп-словами и схлопывает пробелы. Повторный вызов на уже
// очищенном заголовке возвращает ту же строку.
func CleanTitle(text string) string {
	cleaned := text
	for _, rule := range titleRules {
		cleaned = rule.re.ReplaceAllString(cleaned, rule.repl)
	}

	var words []string
	for _, word := range strings.Fields(cleaned) {
		key := strings.ToLower(strings.Trim(word, ".,!?;:"))
		if _, ok := stopWords[key]; ok {
			continue
		}
		words = append(words, word)
	}

	return strings.Join(words, " ")
}
