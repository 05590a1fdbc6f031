package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// 越南语中的 đ 不是组合字符，NFD 无法拆出基本字母
var letterReplacer = strings.NewReplacer("đ", "d", "Đ", "D")

const fallbackPrefix = "user"

// user 加 14 位时间戳，可能带有去重用的数字后缀
var fallbackUsername = regexp.MustCompile(`^user\d{14}\d*$`)

// DeriveUsername 从姓名推导登录名的基础部分：汉字转为拼音，去掉拉丁字母上的声调符号，
// 只保留 ASCII 字母和数字。结果为空时使用 user 加时间戳
func DeriveUsername(fullName string, now time.Time) string {
	if base := transliterate(fullName); base != "" {
		return base
	}
	return fallbackPrefix + now.Format("20060102150405")
}

// KeepsUsername 判断姓名变化后现有登录名是否仍然可用。
// 姓名无法转写时，任何 user 加时间戳形式的登录名都视为仍然有效
func KeepsUsername(username, fullName string) bool {
	base := transliterate(fullName)
	if base == "" {
		return fallbackUsername.MatchString(username)
	}
	return MatchesBase(username, base)
}

func transliterate(fullName string) string {
	var b strings.Builder
	var han []rune

	flushHan := func() {
		if len(han) == 0 {
			return
		}
		for _, syllable := range pinyin.LazyConvert(string(han), nil) {
			b.WriteString(syllable)
		}
		han = han[:0]
	}

	for _, r := range stripMarks(fullName) {
		if unicode.Is(unicode.Han, r) {
			han = append(han, r)
			continue
		}
		flushHan()
		if isASCIIAlnum(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	flushHan()

	return b.String()
}

// MatchesBase 判断现有登录名是否仍由该基础名派生，即等于基础名或基础名加数字后缀
func MatchesBase(username, base string) bool {
	if !strings.HasPrefix(username, base) {
		return false
	}
	for _, r := range username[len(base):] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, letterReplacer.Replace(s))
	if err != nil {
		return s
	}
	return result
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
