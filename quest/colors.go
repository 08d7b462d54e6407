package quest

import "strings"

const colorCodes = "0123456789AaBbCcDdEeFfKkLlMmNnOoRr"

// TranslateColors converts &-prefixed color codes into the § section-sign
// form the messaging layer expects. Unrecognized codes pass through
// untouched.
func TranslateColors(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	b := []rune(s)
	for i := 0; i < len(b)-1; i++ {
		if b[i] == '&' && strings.ContainsRune(colorCodes, b[i+1]) {
			b[i] = '§'
		}
	}
	return string(b)
}
