package billing

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var onesWords = []string{
	"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tensWords = []string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

// belowThousand renders 0-999.
func belowThousand(n int64) []string {
	var words []string
	if n >= 100 {
		words = append(words, onesWords[n/100], "hundred")
		n %= 100
	}
	if n >= 20 {
		words = append(words, tensWords[n/10])
		n %= 10
	}
	if n > 0 {
		words = append(words, onesWords[n])
	}
	return words
}

// integerWords decomposes n by the Indian positional grouping: crore (1e7),
// lakh (1e5), thousand, then the remainder. The crore part recurses so
// amounts past 100 crore stay well-formed.
func integerWords(n int64) []string {
	if n == 0 {
		return []string{"zero"}
	}
	var words []string
	if crore := n / 10000000; crore > 0 {
		words = append(words, integerWords(crore)...)
		words = append(words, "crore")
		n %= 10000000
	}
	if lakh := n / 100000; lakh > 0 {
		words = append(words, belowThousand(lakh)...)
		words = append(words, "lakh")
		n %= 100000
	}
	if thousand := n / 1000; thousand > 0 {
		words = append(words, belowThousand(thousand)...)
		words = append(words, "thousand")
		n %= 1000
	}
	words = append(words, belowThousand(n)...)
	return words
}

var titleCaser = cases.Title(language.English)

// AmountInWords renders a rupee amount in English words using the Indian
// crore/lakh/thousand grouping, e.g. 125000 -> "Rupees One Lakh Twenty Five
// Thousand Only". Paise are rendered when the amount has a fractional part.
// Negative amounts are rendered by their absolute value.
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Abs().Round(2)
	rupees := amount.IntPart()
	paise := amount.Sub(decimal.NewFromInt(rupees)).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	words := append([]string{"rupees"}, integerWords(rupees)...)
	if paise > 0 {
		words = append(words, "and")
		words = append(words, belowThousand(paise)...)
		words = append(words, "paise")
	}
	words = append(words, "only")
	return titleCaser.String(strings.Join(words, " "))
}
