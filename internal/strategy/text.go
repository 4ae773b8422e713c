package strategy

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"catalyst-trader/internal/model"
)

// 引号、破折号等统一为 ASCII
var punctReplacer = strings.NewReplacer(
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`, "\u201f", `"`,
	"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u201b", "'",
	"\u2013", "-", "\u2014", "-", "\u2012", "-", "\u2212", "-", "\u2010", "-", "\u2011", "-",
	"\u00a0", " ", "\u2009", " ", "\u202f", " ",
	"\u2026", "...",
)

// NormalizeText 合并标题与摘要，统一标点并压缩空白
func NormalizeText(title, summary string) string {
	joined := punctReplacer.Replace(title + " " + summary)
	return strings.Join(strings.Fields(joined), " ")
}

var wireHosts = []string{
	"prnewswire.com",
	"globenewswire.com",
	"businesswire.com",
	"accesswire.com",
	"newsfilecorp.com",
	"newswire.ca",
}

var wireSourceTags = []string{
	"pr newswire", "prnewswire",
	"globenewswire", "globe newswire",
	"business wire", "businesswire",
	"accesswire", "newsfile",
}

var wireBoilerplate = []string{
	"/prnewswire/", "/prnewswire-firstcall/",
	"(globe newswire)", "/globe newswire/",
	"(business wire)", "/businesswire/",
	"/accesswire/", "(accesswire)",
	"(newsfile corp.", "/cnw/",
}

// IsWirePR 判断条目是否来自公认的新闻通稿渠道
func IsWirePR(item model.NewsItem, text string) bool {
	if u, err := url.Parse(strings.TrimSpace(item.URL)); err == nil && u.Host != "" {
		host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
		for _, h := range wireHosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return true
			}
		}
	}
	src := strings.ToLower(item.Source)
	for _, tag := range wireSourceTags {
		if strings.Contains(src, tag) {
			return true
		}
	}
	for _, token := range wireBoilerplate {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

var (
	reMoney   = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?\s?(billion|million|thousand|bn|mm|b|m|k)?\b`)
	rePercent = regexp.MustCompile(`(\d{1,4}(?:\.\d+)?)\s?%`)
)

// dollarAmounts 提取文本中所有美元金额 (已换算单位)
func dollarAmounts(text string) []float64 {
	var out []float64
	for _, m := range reMoney.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "")+m[2], 64)
		if err != nil {
			continue
		}
		switch m[3] {
		case "billion", "bn", "b":
			v *= 1e9
		case "million", "mm", "m":
			v *= 1e6
		case "thousand", "k":
			v *= 1e3
		}
		out = append(out, v)
	}
	return out
}

// maxPercent 返回片段中出现的最大百分比
func maxPercent(fragment string) float64 {
	best := 0.0
	for _, m := range rePercent.FindAllStringSubmatch(fragment, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > best {
			best = v
		}
	}
	return best
}

// textContext 是规则求值的输入，一个条目只构建一次
type textContext struct {
	item model.NewsItem
	text string // 归一化后的小写文本

	onWire          bool
	mergerWithPrice bool // 正式并购协议 + 明确的每股/总价
	tier1Adoption   bool // 一线巨头 + 采用/集成类动词
	largeDollar     bool
}

func newTextContext(item model.NewsItem) *textContext {
	text := strings.ToLower(NormalizeText(item.Title, item.Summary))
	tc := &textContext{item: item, text: text}
	tc.onWire = IsWirePR(item, text)
	tc.mergerWithPrice = reDefinitive.MatchString(text) &&
		(rePerShare.MatchString(text) || hasAggregateValue(text))
	tc.tier1Adoption = reTier1.MatchString(text) && reAdoptionVerb.MatchString(text)
	for _, v := range dollarAmounts(text) {
		if v >= largeDollarMin {
			tc.largeDollar = true
			break
		}
	}
	return tc
}

func hasAggregateValue(text string) bool {
	for _, v := range dollarAmounts(text) {
		if v >= 1e6 {
			return true
		}
	}
	return false
}

// offWireAdmitted 非通稿条目的例外准入条件
func (tc *textContext) offWireAdmitted() bool {
	return tc.mergerWithPrice || tc.tier1Adoption
}

func (tc *textContext) has(re *regexp.Regexp) bool {
	return re.MatchString(tc.text)
}
