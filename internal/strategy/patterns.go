package strategy

import "regexp"

// 所有模式都针对 NormalizeText 之后的小写文本

const largeDollarMin = 100e6

func re(pattern string) *regexp.Regexp {
	return regexp.MustCompile(pattern)
}

// 硬性排除
var (
	reLawFirm        = re(`\b(class action|shareholder alert|investor alert|securities fraud|law firm|law offices|rosen law|pomerantz|levi & korsinsky|bragar eagel|faruqi|kessler topaz|investigation on behalf of|investors who (lost|purchased)|lead plaintiff|deadline alert)\b`)
	reAwards         = re(`\b(wins?|won|receives?|received|earns?|earned|honored with)\b.{0,40}\bawards?\b|\bnamed (to|one of)\b.{0,60}\b(list|best|top)\b|\b(\d+(st|nd|rd|th)|milestone) anniversary\b|\bcelebrat(es|ing) \d+ years\b|\brecognized as\b.{0,40}\b(leader|best|top)\b`)
	reProxy          = re(`\b(iss|institutional shareholder services|glass lewis|egan-jones)\b.{0,80}\brecommend`)
	reCyber          = re(`\b(cybersecurity incident|cyber incident|ransomware|data breach|security incident|unauthorized access)\b`)
	reBindingMA      = re(`\b(definitive (merger )?agreement|merger agreement|tender offer)\b`)
	reDilution       = re(`\b(private placement|registered direct|pipe (financing|transaction|offering)|public offering|underwritten offering|pre-funded warrants?|warrant inducement|warrant exercise|offering of .{0,60}\bwarrants?|at-the-market|atm (program|offering|facility)|shelf registration|form s-3)\b`)
	reOfferingAction = re(`\b(announces?|prices?|priced|pricing|closes?|closed|closing|entered into|enters into|upsized|proposed)\b`)
	rePremium        = re(`\b(at a premium|premium to|above[- ]market|strategic invest(or|ors|ment)|priced at-the-market under nasdaq rules)\b`)
	reContractAward  = re(`\b(contract|task order|purchase order|idiq)( awards?| was awarded)\b`)
)

// 临床
var (
	reTrialCtx        = re(`\b(phase (3|iii|2b/3|ii/iii|2/3)|pivotal|registrational)\b`)
	rePrimaryEndpoint = re(`\b(met|meets|achieved|achieves|hit|hits)\b.{0,40}\bprimary (efficacy )?endpoints?\b`)
	reTopline         = re(`\bpositive (topline|top-line)\b`)
	reStrongTopline   = re(`\b(positive topline|positive top-line|strong topline|robust|highly statistically significant|p ?< ?0\.0\d*)`)
	reStatSig         = re(`\bstatistically significant\b`)
	reStudy           = re(`\b(trial|study|endpoint|cohort)\b`)
	rePrimate         = re(`\b(non-human primates?|nhps?|primates?)\b`)
	reTolerability    = re(`\b(well[- ]tolerated|tolerability|favorable safety|safe)\b`)
	rePatientCells    = re(`\bpatient[- ]derived\b.{0,40}\b(cells?|organoids?|neurons?|ipscs?)\b`)
	reEarlyEfficacy   = re(`\b(efficacy|rescue[sd]?|restor(e|es|ed|ing)|reduc(e|es|ed|ing)|revers(e|es|ed|ing))\b`)
	reHotIndication   = re(`\b(alzheimer'?s|parkinson'?s|als|amyotrophic lateral sclerosis|huntington'?s|neurodegenerat\w*|dementia|obesity|glp-1)\b`)
)

// 监管
var (
	reFDAApproval     = re(`\b(fda|food and drug administration)\b.{0,60}\b(approv(al|es|ed)|grants? (accelerated )?approval)\b|\breceives? (u\.s\. )?fda approval\b`)
	reForeignAuth     = re(`\b(european commission|ema|mhra|health canada|pmda|nmpa)\b.{0,60}\b(approv(al|es|ed)|marketing authori[sz]ation)\b`)
	reCEMark          = re(`\bce mark`)
	re510k            = re(`\b510\(k\)`)
	reLabelSupplement = re(`\b(label (expansion|supplement|update)|supplemental (new drug application|biologics license application|nda|bla)|snda|sbla)\b`)
	reAdcom           = re(`\badvisory committee\b.{0,80}\b(vot(ed|es) (\d+ to \d+ )?in favor|unanimous(ly)?|positive (vote|opinion))|\bchmp\b.{0,40}\bpositive opinion\b`)
	reRegProcess      = re(`\b(fast track|breakthrough therapy designation|orphan drug designation|rare pediatric disease|ind clearance|clears? (its )?ind|accepts? (the )?(nda|bla|filing)|pdufa (date|goal)|rolling submission|type [abc] meeting)\b`)
	reJournal         = re(`\b(published in|publication in|peer-reviewed|journal of|the lancet|nejm|new england journal)\b`)
	reConference      = re(`\b(to present|will present|presentation at|poster|oral presentation|late-breaking|abstract)\b`)
	reStrongOutcome   = re(`\b(statistically significant|met (its |the )?primary endpoint|positive topline|complete response|durable response|superior(ity)?)\b`)
)

// 并购
var (
	reTargetAcquired = re(`\b(to be acquired by|agreed to be acquired|agreement to be acquired|will be acquired by|to be taken private by)\b`)
	reDefinitive     = re(`\bdefinitive (merger )?agreement\b|\bmerger agreement\b`)
	reMAContext      = re(`\b(acquir\w*|acquisition|merger|merge|buyout|take private|go[- ]private)\b`)
	reTenderOffer    = re(`\btender offer\b`)
	rePerShare       = re(`\$\s?\d+(\.\d+)? (per|a) share\b`)
	reSweetened      = re(`\b(revised|sweetened|increased|raises?|raised|improved) (its |the )?(offer|proposal|bid)\b`)
	reCashAndStock   = re(`\bcash[- ]and[- ]stock\b`)
	reNonBinding     = re(`\b(non-binding|nonbinding|letter of intent|loi|indication of interest|preliminary proposal)\b`)
	reAdminExtension = re(`\b(extends?|extended|extension of) (the )?(tender offer|expiration|outside date|offer period)\b`)
	reStrategicAlt   = re(`\bstrategic alternatives\b`)
)

// 合作与政府
var (
	reTier1           = re(`\b(nvidia|microsoft|apple|amazon|aws|google|alphabet|meta platforms|tesla|openai|oracle|ibm|intel|amd|qualcomm|samsung|sony|pfizer|merck|johnson & johnson|novartis|roche|astrazeneca|eli lilly|lockheed martin|boeing|raytheon|northrop grumman|walmart|spacex|palantir|salesforce|cisco)\b`)
	rePartnershipWord = re(`\b(partnership|partners with|partnered with|collaboration|strategic alliance|joint venture|supply agreement|licensing agreement|license agreement|commercial agreement)\b`)
	reAdoptionVerb    = re(`\b(adopts?|adopted|integrat(es|ed|ing)|deploys?|deployed|selects?|selected|chooses|chose|standardi[sz]es on)\b`)
	reGovAgency       = re(`\b(department of (defense|energy|war|homeland security)|dod|u\.s\. (army|navy|air force|space force)|darpa|nasa|pentagon|federal government|u\.s\. government)\b`)
	reGovAward        = re(`\b(contract|awarded|award|task order|purchase order|idiq)\b`)
	reGovEquity       = re(`\b(government|department of \w+|u\.s\.|federal)\b.{0,60}\b(equity stake|take[s]? (an? )?(equity )?stake|equity investment)\b`)
	reNationwide      = re(`\b(nationwide|national rollout|across all 50 states|countrywide)\b`)
)

// 业绩
var (
	reBeat        = re(`\b(beats?|tops?|exceeds?|exceeded|surpass(es|ed)|ahead of)\b.{0,40}\b(estimates|expectations|consensus)\b`)
	reRaise       = re(`\b(raises?|raised|increases?|boosts?)\b.{0,30}\b(guidance|outlook|forecast)\b`)
	reProfitSwing = re(`\b(returns? to profitability|returned to profitability|first (ever )?(profitable|profit)|swings? to (a )?(net )?profit|turns? profitable)\b`)
	reResults     = re(`\b(q[1-4]|first|second|third|fourth|full[- ]year|fiscal)\b.{0,30}\bresults\b|\b(reports?|reported|announces?)\b.{0,40}\b(quarter|quarterly|annual|year-end)\b.{0,20}\bresults\b`)
	reGrowthLead  = re(`\b(revenues?|sales|eps|earnings|net income|bookings|arr)\b[^.]{0,40}?\b(up|grew|growth|increased?|rose|jump(ed|s)?|surged?|climb(ed|s)?)\b[^.%]{0,15}?\d{1,4}(\.\d+)?\s?%`)
	reGrowthTrail = re(`\d{1,4}(\.\d+)?\s?% (increase|growth|rise|jump)\b[^.]{0,20}\b(revenues?|sales|eps|earnings)\b`)
)

// 指数、上市、融资、加密储备
var (
	reIndexJoin     = re(`\b(added to|add to|joins?|joined|inclusion in|included in|to be included|will be added|set to join)\b`)
	reMajorIndex    = re(`\b(s&p (500|400|600|midcap 400|smallcap 600)|s&p/tsx composite|msci|ftse|nasdaq-100|dow jones industrial)\b`)
	reMinorIndex    = re(`\b(russell (1000|2000|3000|microcap)|russell|tsx venture|regional index|otcqx)\b`)
	reUplist        = re(`\b(uplist(ing|s|ed)?|approved (for|to) list(ing)? on|to begin trading on|commence[s]? trading on)\b.{0,40}\b(nasdaq|nyse)\b`)
	reFinancingWord = re(`\b(investment|financing|private placement|offering|purchase agreement|equity)\b`)
	reCryptoAsset   = re(`\b(bitcoin|btc|ethereum|eth|solana|sol|xrp|digital assets?|crypto(currency|currencies)?)\b`)
	reTreasuryWord  = re(`\b(treasury|reserve)\b`)
	rePurchased     = re(`\b(purchas(es|ed)|acquir(es|ed)|buys|bought|complet(es|ed) (the |its )?(purchase|acquisition))\b`)
	reDiscussion    = re(`\b(term sheet|in discussions|exploring|evaluat(es|ing)|considering|letter of intent)\b`)
)

// 低信号类别与通用加成
var (
	reInvestorConf = re(`\b(investor|investment|capital markets|healthcare|growth) conference\b|\bfireside chat\b`)
	reAnalyst      = re(`\b(upgrade[sd]?|downgrade[sd]?|initiates coverage|reiterates|price target|outperform|overweight|buy rating)\b`)
	reShelf        = re(`\b(shelf registration|form s-3|at-the-market|atm (program|offering|facility))\b`)
	reSuperlative  = re(`\b(record|unprecedented|breakthrough|first-ever|historic)\b`)
	reMultiple     = re(`\b(doubl(e|es|ed|ing)|tripl(e|es|ed|ing)|quadrupl\w*|[2-9]x)\b`)
)

// hasBigGrowth 是否出现 >= 50% 的收入/利润类增长
func hasBigGrowth(text string) bool {
	for _, r := range []*regexp.Regexp{reGrowthLead, reGrowthTrail} {
		for _, frag := range r.FindAllString(text, -1) {
			if maxPercent(frag) >= 50 {
				return true
			}
		}
	}
	return false
}
