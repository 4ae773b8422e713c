package strategy

import (
	"regexp"

	"catalyst-trader/internal/model"
)

// RuleSetVersion 规则表版本，规则调整时递增
const RuleSetVersion = "2024.3"

// plainDilutionScore 普通稀释性融资仍保留一点信息量
const plainDilutionScore = 0.05

type predicate func(tc *textContext) bool

// all 所有模式都命中
func all(res ...*regexp.Regexp) predicate {
	return func(tc *textContext) bool {
		for _, r := range res {
			if !tc.has(r) {
				return false
			}
		}
		return true
	}
}

func anyOf(res ...*regexp.Regexp) predicate {
	return func(tc *textContext) bool {
		for _, r := range res {
			if tc.has(r) {
				return true
			}
		}
		return false
	}
}

func and(ps ...predicate) predicate {
	return func(tc *textContext) bool {
		for _, p := range ps {
			if !p(tc) {
				return false
			}
		}
		return true
	}
}

func not(p predicate) predicate {
	return func(tc *textContext) bool { return !p(tc) }
}

// Admission 规则的来源准入策略
type Admission int

const (
	AdmitAlways Admission = iota
	// AdmitWireGated 需要通稿来源，或满足非通稿例外条件
	AdmitWireGated
)

func (a Admission) admits(tc *textContext) bool {
	if a == AdmitWireGated {
		return tc.onWire || tc.offWireAdmitted()
	}
	return true
}

// Guard 硬性排除规则，按顺序求值，第一个命中即短路为 OTHER
type Guard struct {
	Tag   string
	Score float64
	Match predicate
}

// Rule 正向检测规则 (predicate, class, weight, admission)
type Rule struct {
	Tag       string
	Class     model.CatalystClass
	Weight    float64
	Admission Admission
	Match     predicate
}

// isPlainDilution 只针对融资公告；带约束力的并购文本里提到期权、认股权证的处理方式不算
func isPlainDilution(tc *textContext) bool {
	if tc.has(reBindingMA) || tc.has(reTargetAcquired) {
		return false
	}
	return tc.has(reDilution) && tc.has(reOfferingAction) && !tc.has(rePremium)
}

// isAwardPuffery 政府或合同授予不归入奖项宣传
func isAwardPuffery(tc *textContext) bool {
	return tc.has(reAwards) && !tc.has(reContractAward) && !tc.has(reGovAgency)
}

func isRoutineResults(tc *textContext) bool {
	return tc.has(reResults) && !tc.has(reBeat) && !tc.has(reRaise) &&
		!tc.has(reProfitSwing) && !hasBigGrowth(tc.text)
}

// DefaultGuards 优先级从高到低
var DefaultGuards = []Guard{
	{Tag: "law_firm_solicitation", Match: all(reLawFirm)},
	{Tag: "award_puffery", Match: isAwardPuffery},
	{Tag: "proxy_advisor_rec", Match: and(all(reProxy), not(all(reBindingMA)))},
	{Tag: "cyber_incident_update", Match: all(reCyber)},
	{Tag: "plain_dilution", Score: plainDilutionScore, Match: isPlainDilution},
}

// DefaultRules 正向规则表
var DefaultRules = []Rule{
	// 临床
	{Tag: "pivotal_primary_endpoint", Class: model.ClassPivotalTrial, Weight: 6, Match: all(reTrialCtx, rePrimaryEndpoint)},
	{Tag: "primary_endpoint", Class: model.ClassPivotalTrial, Weight: 3, Match: and(all(rePrimaryEndpoint), not(all(reTrialCtx)))},
	{Tag: "positive_topline", Class: model.ClassPivotalTrial, Weight: 3, Match: all(reTopline)},
	{Tag: "statistically_significant", Class: model.ClassPivotalTrial, Weight: 2, Match: all(reStatSig, reStudy)},
	{Tag: "nhp_tolerability", Class: model.ClassPivotalTrial, Weight: 2, Match: all(rePrimate, reTolerability)},
	{Tag: "patient_cell_efficacy", Class: model.ClassPivotalTrial, Weight: 2, Match: all(rePatientCells, reEarlyEfficacy)},

	// 上市许可
	{Tag: "fda_approval", Class: model.ClassMarketingAuth, Weight: 8, Admission: AdmitWireGated, Match: all(reFDAApproval)},
	{Tag: "foreign_authorization", Class: model.ClassMarketingAuth, Weight: 7, Admission: AdmitWireGated, Match: all(reForeignAuth)},
	{Tag: "ce_mark", Class: model.ClassMarketingAuth, Weight: 4, Admission: AdmitWireGated, Match: all(reCEMark)},
	{Tag: "510k_clearance", Class: model.ClassMarketingAuth, Weight: 4, Admission: AdmitWireGated, Match: all(re510k)},
	{Tag: "adcom_positive", Class: model.ClassAdcomPositive, Weight: 7, Admission: AdmitWireGated, Match: all(reAdcom)},

	// 并购
	{Tag: "target_acquired", Class: model.ClassAcquisition, Weight: 8, Admission: AdmitWireGated, Match: all(reTargetAcquired)},
	{Tag: "definitive_merger", Class: model.ClassAcquisition, Weight: 4, Admission: AdmitWireGated, Match: all(reDefinitive, reMAContext)},
	{Tag: "tender_offer", Class: model.ClassAcquisition, Weight: 3, Admission: AdmitWireGated, Match: all(reTenderOffer)},
	{Tag: "per_share_price", Class: model.ClassAcquisition, Weight: 3, Admission: AdmitWireGated, Match: all(rePerShare, reMAContext)},

	// 合作与政府
	{Tag: "tier1_partnership", Class: model.ClassTier1Partner, Weight: 6, Admission: AdmitWireGated, Match: all(reTier1, rePartnershipWord)},
	{Tag: "tier1_adoption", Class: model.ClassTier1Partner, Weight: 3, Admission: AdmitWireGated, Match: func(tc *textContext) bool { return tc.tier1Adoption }},
	{Tag: "gov_contract", Class: model.ClassGovContract, Weight: 6, Admission: AdmitWireGated, Match: all(reGovAgency, reGovAward)},
	{Tag: "gov_equity_stake", Class: model.ClassGovEquity, Weight: 7, Admission: AdmitWireGated, Match: all(reGovEquity)},

	// 业绩
	{Tag: "estimate_beat", Class: model.ClassEarningsBeat, Weight: 5, Match: all(reBeat)},
	{Tag: "guidance_raise", Class: model.ClassEarningsBeat, Weight: 4, Match: all(reRaise)},
	{Tag: "profit_swing", Class: model.ClassEarningsBeat, Weight: 4, Match: all(reProfitSwing)},
	{Tag: "big_growth", Class: model.ClassEarningsBeat, Weight: 3, Match: func(tc *textContext) bool { return hasBigGrowth(tc.text) }},
	{Tag: "routine_results", Class: model.ClassOther, Weight: -4, Match: isRoutineResults},

	// 指数、上市、融资
	{Tag: "index_inclusion", Class: model.ClassIndexInclusion, Weight: 5, Admission: AdmitWireGated, Match: and(all(reIndexJoin), anyOf(reMajorIndex, reMinorIndex))},
	{Tag: "uplisting", Class: model.ClassUplisting, Weight: 6, Match: all(reUplist)},
	{Tag: "premium_financing", Class: model.ClassFinancing, Weight: 7, Match: all(rePremium, reFinancingWord)},

	// 加密储备
	{Tag: "crypto_treasury_purchase", Class: model.ClassCryptoTreasury, Weight: 6, Match: all(reCryptoAsset, reTreasuryWord, rePurchased)},
	{Tag: "crypto_treasury_plan", Class: model.ClassCryptoTreasury, Weight: 3, Match: and(all(reCryptoAsset, reTreasuryWord), not(all(rePurchased)))},
}

// DefaultStrongFloors 总权重 <= 0 时，这些类别达到阈值仍可胜出
var DefaultStrongFloors = map[model.CatalystClass]float64{
	model.ClassAcquisition:   8,
	model.ClassMarketingAuth: 8,
	model.ClassPivotalTrial:  8,
	model.ClassFinancing:     7,
	model.ClassUplisting:     6,
}
