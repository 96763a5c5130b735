package chat

// Language is the conversation display language.
type Language string

const (
	LangEnglish Language = "en"
	LangHindi   Language = "hi"
	LangKannada Language = "kn"
	LangTelugu  Language = "te"
)

// ParseLanguage maps a raw tag to a supported language, defaulting to English.
func ParseLanguage(s string) Language {
	switch Language(s) {
	case LangHindi, LangKannada, LangTelugu:
		return Language(s)
	default:
		return LangEnglish
	}
}

var welcomes = map[Language]string{
	LangEnglish: "Namaste! I am your Agri-AI assistant. Ask me about crops, pests, fertilizers or the weather.",
	LangHindi:   "नमस्ते! मैं आपका कृषि सहायक हूँ। फसल, कीट, खाद या मौसम के बारे में पूछें।",
	LangKannada: "ನಮಸ್ಕಾರ! ನಾನು ನಿಮ್ಮ ಕೃಷಿ ಸಹಾಯಕ. ಬೆಳೆ, ಕೀಟ, ಗೊಬ್ಬರ ಅಥವಾ ಹವಾಮಾನದ ಬಗ್ಗೆ ಕೇಳಿ.",
	LangTelugu:  "నమస్కారం! నేను మీ వ్యవసాయ సహాయకుడిని. పంటలు, పురుగులు, ఎరువులు లేదా వాతావరణం గురించి అడగండి.",
}

var apologies = map[Language]string{
	LangEnglish: "Sorry, I am having trouble connecting to the agri-server. Please try again later.",
	LangHindi:   "क्षमा करें, मुझे सर्वर से जुड़ने में समस्या हो रही है। कृपया बाद में पुनः प्रयास करें।",
	LangKannada: "ಕ್ಷಮಿಸಿ, ಸರ್ವರ್‌ಗೆ ಸಂಪರ್ಕಿಸಲು ತೊಂದರೆಯಾಗುತ್ತಿದೆ. ದಯವಿಟ್ಟು ನಂತರ ಪ್ರಯತ್ನಿಸಿ.",
	LangTelugu:  "క్షమించండి, సర్వర్‌కు కనెక్ట్ చేయడంలో సమస్య ఉంది. దయచేసి తర్వాత మళ్లీ ప్రయత్నించండి.",
}

// Welcome is the synthetic greeting turn text for the language.
func Welcome(l Language) string {
	if s, ok := welcomes[l]; ok {
		return s
	}
	return welcomes[LangEnglish]
}

// Apology is the fixed text of the synthetic error turn appended when
// generation fails.
func Apology(l Language) string {
	if s, ok := apologies[l]; ok {
		return s
	}
	return apologies[LangEnglish]
}
