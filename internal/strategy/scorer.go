package strategy

import (
	"math"

	"github.com/sourcegraph/conc/iter"

	"catalyst-trader/internal/model"
	"catalyst-trader/internal/service"
)

// ClassPriors 各类别的基础置信度
var ClassPriors = map[model.CatalystClass]float64{
	model.ClassPivotalTrial:   0.72,
	model.ClassMarketingAuth:  0.70,
	model.ClassAcquisition:    0.62,
	model.ClassAdcomPositive:  0.60,
	model.ClassGovEquity:      0.58,
	model.ClassTier1Partner:   0.55,
	model.ClassGovContract:    0.52,
	model.ClassUplisting:      0.48,
	model.ClassEarningsBeat:   0.45,
	model.ClassIndexInclusion: 0.45,
	model.ClassCryptoTreasury: 0.45,
	model.ClassFinancing:      0.42,
	model.ClassOther:          0.20,
}

// wireSensitive 与分类器一致的来源敏感类别
var wireSensitive = map[model.CatalystClass]bool{
	model.ClassMarketingAuth:  true,
	model.ClassAdcomPositive:  true,
	model.ClassTier1Partner:   true,
	model.ClassGovContract:    true,
	model.ClassGovEquity:      true,
	model.ClassAcquisition:    true,
	model.ClassEarningsBeat:   true,
	model.ClassIndexInclusion: true,
	model.ClassUplisting:      true,
}

// 上限
const (
	capAuthVariant     = 0.45
	capProcessMention  = 0.40
	capAdminExtension  = 0.30
	capMinorIndex      = 0.35
	capOffWire         = 0.45
	capRoutineResults  = 0.30
	capPlainDilution   = 0.15
	capLawFirm         = 0.0
	capAwards          = 0.0
	capProxyAdvisor    = 0.10
	capCyberIncident   = 0.05
	capInvestorConf    = 0.15
	capAnalystAction   = 0.25
	capShelfATM        = 0.10
	capStrategicReview = 0.30
)

// cohortCap 低信号类别，命中后不受任何加成影响
type cohortCap struct {
	tag   string
	cap   float64
	match predicate
}

var lowSignalCohorts = []cohortCap{
	{"law_firm", capLawFirm, all(reLawFirm)},
	{"awards", capAwards, isAwardPuffery},
	{"proxy_advisor", capProxyAdvisor, all(reProxy)},
	{"cyber_incident", capCyberIncident, all(reCyber)},
	{"investor_conference", capInvestorConf, all(reInvestorConf)},
	{"analyst_action", capAnalystAction, all(reAnalyst)},
	{"shelf_atm", capShelfATM, all(reShelf)},
	{"strategic_alternatives", capStrategicReview, all(reStrategicAlt)},
	{"plain_dilution", capPlainDilution, isPlainDilution},
}

// ImpactScorer 将分类结果转换为 [0,1] 的置信度，纯函数
type ImpactScorer struct {
	SmallCapLimit float64
}

func NewImpactScorer() *ImpactScorer {
	return &ImpactScorer{SmallCapLimit: 1e9}
}

// Score 对单条分类结果打分，同样的输入总是得到同样的分数
func (s *ImpactScorer) Score(ci model.ClassifiedItem) model.ScoredItem {
	tc := newTextContext(ci.NewsItem)
	class := ci.Class

	prior, ok := ClassPriors[class]
	if !ok {
		prior = ClassPriors[model.ClassOther]
	}
	raw := ci.RawScore
	if !service.IsFinite(raw) {
		raw = 0
	}
	score := prior + 0.01*service.Clamp(raw, 0, 10)

	// 1. 按类别的加减分
	switch class {
	case model.ClassPivotalTrial:
		score += pivotalAdjustment(tc)
	case model.ClassAcquisition:
		score += mergerAdjustment(tc)
	case model.ClassIndexInclusion:
		if tc.has(reMajorIndex) {
			score += 0.06
		}
	}
	if tc.has(reCryptoAsset) && tc.has(reTreasuryWord) {
		switch {
		case tc.has(rePurchased):
			score += 0.08
		case tc.has(reDiscussion):
			score += 0.03
		}
		if tc.largeDollar {
			score += 0.04
		}
	}
	if wireSensitive[class] && tc.onWire {
		score += 0.03
	}
	routineResults := tc.has(reResults) && !tc.has(reBeat) && !tc.has(reRaise)
	resultsException := tc.has(reProfitSwing) || hasBigGrowth(tc.text)
	if routineResults && resultsException {
		score += 0.06
	}

	// 2. 软上限：通用加成仍可在此之后生效
	if class == model.ClassMarketingAuth &&
		(tc.has(reCEMark) || tc.has(re510k) || tc.has(reLabelSupplement)) {
		score = math.Min(score, capAuthVariant)
	}
	if (tc.has(reRegProcess) || tc.has(reJournal) || tc.has(reConference)) && !tc.has(reStrongOutcome) {
		score = math.Min(score, capProcessMention)
	}
	if class == model.ClassAcquisition && tc.has(reAdminExtension) {
		score = math.Min(score, capAdminExtension)
	}
	if class == model.ClassIndexInclusion && tc.has(reMinorIndex) && !tc.has(reMajorIndex) {
		score = math.Min(score, capMinorIndex)
	}
	if wireSensitive[class] && !tc.onWire && !tc.offWireAdmitted() {
		score = math.Min(score, capOffWire)
	}
	if routineResults && !resultsException {
		score = math.Min(score, capRoutineResults)
	}

	// 3. 硬上限
	score = applyCohortCaps(tc, score)

	// 4. 通用加成
	score += s.universalBoost(tc)

	// 硬上限优先于通用加成
	score = applyCohortCaps(tc, score)

	return model.ScoredItem{ClassifiedItem: ci, Score: service.Clamp(score, 0, 1)}
}

// ScoreBatch 批量打分
func (s *ImpactScorer) ScoreBatch(items []model.ClassifiedItem) []model.ScoredItem {
	return iter.Map(items, func(ci *model.ClassifiedItem) model.ScoredItem {
		return s.Score(*ci)
	})
}

func pivotalAdjustment(tc *textContext) float64 {
	adj := 0.0
	if tc.has(reTrialCtx) {
		adj += 0.04
	}
	if tc.has(reStatSig) {
		adj += 0.04
	}
	if !tc.has(reStrongTopline) {
		adj -= 0.03
	}
	early := false
	if tc.has(rePrimate) && tc.has(reTolerability) {
		adj += 0.03
		early = true
	}
	if tc.has(rePatientCells) && tc.has(reEarlyEfficacy) {
		adj += 0.03
		early = true
	}
	if early && tc.has(reHotIndication) {
		adj += 0.04
	}
	return adj
}

func mergerAdjustment(tc *textContext) float64 {
	adj := 0.0
	if tc.has(reDefinitive) {
		adj += 0.06
	}
	if tc.has(reTenderOffer) {
		adj += 0.05
	}
	if tc.has(reSweetened) {
		adj += 0.05
	}
	if tc.has(reCashAndStock) {
		adj += 0.02
	}
	if tc.has(rePerShare) {
		adj += 0.04
	}
	if tc.has(reNonBinding) {
		adj -= 0.10
	}
	return adj
}

func applyCohortCaps(tc *textContext, score float64) float64 {
	for _, c := range lowSignalCohorts {
		if c.match(tc) {
			score = math.Min(score, c.cap)
		}
	}
	return score
}

func (s *ImpactScorer) universalBoost(tc *textContext) float64 {
	boost := 0.0
	if mc := tc.item.MarketCap; mc > 0 && mc < s.SmallCapLimit {
		boost += 0.05
	}
	if tc.has(reSuperlative) {
		boost += 0.03
	}
	if tc.largeDollar {
		boost += 0.03
	}
	if tc.has(reMultiple) {
		boost += 0.03
	}
	if len(tc.item.Symbols) == 1 {
		boost += 0.02
	}
	return boost
}
