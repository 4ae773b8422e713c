package model

import "time"

// NewsItem 是新闻源适配器输出的标准化条目
type NewsItem struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Symbols     []string  `json:"symbols"`              // 第一个为主标的，可以为空
	MarketCap   float64   `json:"market_cap,omitempty"` // 0 表示未知
}

// PrimarySymbol 返回主标的，没有标的时返回空串
func (n NewsItem) PrimarySymbol() string {
	if len(n.Symbols) == 0 {
		return ""
	}
	return n.Symbols[0]
}

// Bar 代表一分钟聚合行情
type Bar struct {
	Symbol    string    `json:"symbol"`
	StartTime time.Time `json:"start_time"` // K 线开盘时间
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// CatalystClass 新闻事件类别
type CatalystClass string

const (
	ClassPivotalTrial   CatalystClass = "PIVOTAL_TRIAL_SUCCESS"
	ClassMarketingAuth  CatalystClass = "FDA_MARKETING_AUTH"
	ClassAdcomPositive  CatalystClass = "FDA_ADCOM_POSITIVE"
	ClassAcquisition    CatalystClass = "ACQUISITION"
	ClassTier1Partner   CatalystClass = "TIER1_PARTNERSHIP"
	ClassGovContract    CatalystClass = "GOV_CONTRACT"
	ClassGovEquity      CatalystClass = "GOV_EQUITY"
	ClassEarningsBeat   CatalystClass = "EARNINGS_BEAT"
	ClassIndexInclusion CatalystClass = "INDEX_INCLUSION"
	ClassUplisting      CatalystClass = "UPLISTING"
	ClassFinancing      CatalystClass = "STRATEGIC_FINANCING"
	ClassCryptoTreasury CatalystClass = "CRYPTO_TREASURY"
	ClassOther          CatalystClass = "OTHER"
)

// CatalystClasses 是类别的声明顺序，分类器按此顺序打破平局
var CatalystClasses = []CatalystClass{
	ClassPivotalTrial,
	ClassMarketingAuth,
	ClassAdcomPositive,
	ClassAcquisition,
	ClassTier1Partner,
	ClassGovContract,
	ClassGovEquity,
	ClassEarningsBeat,
	ClassIndexInclusion,
	ClassUplisting,
	ClassFinancing,
	ClassCryptoTreasury,
	ClassOther,
}

func (c CatalystClass) String() string {
	return string(c)
}

// ClassifiedItem 分类结果
type ClassifiedItem struct {
	NewsItem
	Class    CatalystClass `json:"class"`
	RawScore float64       `json:"raw_score"`
	Reasons  []string      `json:"reasons,omitempty"`  // 命中的规则标签
	RuleSet  string        `json:"rule_set,omitempty"` // 产生该结果的规则表版本
}

// ScoredItem 评分结果，Score ∈ [0,1]
type ScoredItem struct {
	ClassifiedItem
	Score float64 `json:"score"`
}

// ConfirmSignal 价格确认门限的计算结果
type ConfirmSignal struct {
	Symbol  string  `json:"symbol"`
	VolZ    float64 `json:"vol_z"`
	Ret1m   float64 `json:"ret_1m"`
	VwapDev float64 `json:"vwap_dev"`
	Pass    bool    `json:"pass"`
}
