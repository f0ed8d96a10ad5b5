package recipe

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"recipe-pantry/internal/pkg/common"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

const (
	// DefaultUnit 沒有單位時的計數單位
	DefaultUnit = "個"

	unitPinch   = "少々"
	unitToTaste = "適量"
)

// Units 可辨識的單位
var Units = []string{
	"個", "g", "kg", "mg", "ml", "mL", "L", "cc",
	"本", "枚", "袋", "パック", "大さじ", "小さじ", "カップ",
	"片", "かけ", "束", "株", "玉", "切れ", "丁", "缶", "合", "尾",
	unitPinch, unitToTaste,
}

// 只有數量相關的全形字元轉半形，名稱中的括號、英文字母、半形片假名保持原樣
var quantityNarrower = runes.If(runes.Predicate(isQuantityRune), width.Narrow, nil)

func isQuantityRune(r rune) bool {
	return (r >= '０' && r <= '９') || r == '．' || r == '／' || r == '～'
}

// 把各種波浪號統一成範圍分隔符號
var rangeReplacer = strings.NewReplacer("~", "-", "〜", "-", "～", "-", "〰", "-", "\u3000", " ")

const quantityPattern = `(\d+(?:\.\d+)?(?:/\d+(?:\.\d+)?)?(?:-\d+(?:\.\d+)?(?:/\d+(?:\.\d+)?)?)?)`

var (
	quantityWithUnit = regexp.MustCompile(`^(.+?)\s+` + quantityPattern + `\s*(` + unitAlternation() + `)$`)
	vagueUnit        = regexp.MustCompile(`^(.+?)\s+(` + unitPinch + `|` + unitToTaste + `)$`)
	quantityOnly     = regexp.MustCompile(`^(.+?)\s+` + quantityPattern + `$`)
)

// unitAlternation 長的單位排前面，避免 g 先吃掉 kg
func unitAlternation() string {
	units := append([]string(nil), Units...)
	sort.SliceStable(units, func(i, j int) bool {
		return len(units[i]) > len(units[j])
	})
	quoted := make([]string, len(units))
	for i, u := range units {
		quoted[i] = regexp.QuoteMeta(u)
	}
	return strings.Join(quoted, "|")
}

// NormalizeIngredientLine 全形數字、小數點、斜線、波浪號轉為半形並統一範圍符號
func NormalizeIngredientLine(line string) string {
	narrowed, _, err := transform.String(quantityNarrower, line)
	if err != nil {
		narrowed = line
	}
	return rangeReplacer.Replace(narrowed)
}

// ParseIngredientLine 把一行食材文字拆成名稱、數量與單位，任何輸入都會回傳結果
func ParseIngredientLine(line string) common.ParsedIngredientLine {
	normalized := strings.TrimSpace(NormalizeIngredientLine(line))

	if m := quantityWithUnit.FindStringSubmatch(normalized); m != nil {
		return common.ParsedIngredientLine{
			Name:     strings.TrimSpace(m[1]),
			Quantity: ParseQuantity(m[2]),
			Unit:     m[3],
		}
	}

	if m := vagueUnit.FindStringSubmatch(normalized); m != nil {
		return common.ParsedIngredientLine{
			Name:     strings.TrimSpace(m[1]),
			Quantity: 1,
			Unit:     m[2],
		}
	}

	if m := quantityOnly.FindStringSubmatch(normalized); m != nil {
		return common.ParsedIngredientLine{
			Name:     strings.TrimSpace(m[1]),
			Quantity: ParseQuantity(m[2]),
			Unit:     DefaultUnit,
		}
	}

	return common.ParsedIngredientLine{
		Name:     strings.TrimSpace(line),
		Quantity: 1,
		Unit:     DefaultUnit,
	}
}

// ParseQuantity 解析數量：a/b 取商、a-b 取上限，無法解析時為 1
func ParseQuantity(s string) float64 {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndex(s, "-"); idx != -1 {
		s = s[idx+1:]
	}

	var value float64
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 1
		}
		value = n / d
	} else {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 1
		}
		value = v
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 1
	}
	return value
}

// IsMeasurable 少々、適量等單位沒有數值意義
func IsMeasurable(unit string) bool {
	return unit != unitPinch && unit != unitToTaste
}
