package strategy

import (
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"catalyst-trader/internal/model"
)

// 额外的跨类别加成
const (
	synergyAuthWithTrial = 2.0
	synergyScaleToOther  = 1.0
)

// EventClassifier 基于规则表的新闻事件分类器，无内部可变状态
type EventClassifier struct {
	guards []Guard
	rules  []Rule
	floors map[model.CatalystClass]float64
	logger *zap.SugaredLogger
}

// NewEventClassifier 使用默认规则表
func NewEventClassifier(logger *zap.SugaredLogger) *EventClassifier {
	return NewEventClassifierWithRules(DefaultGuards, DefaultRules, DefaultStrongFloors, logger)
}

// NewEventClassifierWithRules 允许测试注入自定义规则表
func NewEventClassifierWithRules(guards []Guard, rules []Rule, floors map[model.CatalystClass]float64, logger *zap.SugaredLogger) *EventClassifier {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger.Infof("Event classifier ready: rule set %s, %d guards, %d rules", RuleSetVersion, len(guards), len(rules))
	return &EventClassifier{guards: guards, rules: rules, floors: floors, logger: logger}
}

// Classify 返回唯一的类别和原始规则得分，任何异常都退化为 OTHER/0
func (c *EventClassifier) Classify(item model.NewsItem) (out model.ClassifiedItem) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("Classifier panic on item %q: %v", item.ID, r)
			out = model.ClassifiedItem{NewsItem: item, Class: model.ClassOther, RuleSet: RuleSetVersion}
		}
	}()

	tc := newTextContext(item)
	out = model.ClassifiedItem{NewsItem: item, Class: model.ClassOther, RuleSet: RuleSetVersion}

	// 1. 硬性排除：第一个命中即返回
	for _, g := range c.guards {
		if g.Match(tc) {
			out.RawScore = g.Score
			out.Reasons = []string{"guard:" + g.Tag}
			return out
		}
	}

	// 2. 正向规则 + 来源准入
	totals := make(map[model.CatalystClass]float64)
	for _, r := range c.rules {
		if !r.Admission.admits(tc) || !r.Match(tc) {
			continue
		}
		totals[r.Class] += r.Weight
		out.Reasons = append(out.Reasons, r.Tag)
	}

	// 3. 跨类别加成
	if totals[model.ClassPivotalTrial] > 0 && totals[model.ClassMarketingAuth] > 0 {
		totals[model.ClassMarketingAuth] += synergyAuthWithTrial
		out.Reasons = append(out.Reasons, "synergy:trial_plus_auth")
	}
	if (tc.largeDollar || tc.has(reNationwide)) &&
		(totals[model.ClassTier1Partner] > 0 || totals[model.ClassGovContract] > 0) {
		totals[model.ClassOther] += synergyScaleToOther
		out.Reasons = append(out.Reasons, "synergy:scale_language")
	}

	// 4. 选择
	out.Class, out.RawScore = c.selectClass(totals)
	if out.Class == model.ClassOther && out.RawScore == 0 {
		out.Reasons = nil
	}
	return out
}

// selectClass 取权重最高的类别，平局按声明顺序取先声明者
func (c *EventClassifier) selectClass(totals map[model.CatalystClass]float64) (model.CatalystClass, float64) {
	total := 0.0
	for _, w := range totals {
		total += w
	}

	if total <= 0 {
		best, bestW := model.ClassOther, 0.0
		for _, class := range model.CatalystClasses {
			floor, ok := c.floors[class]
			if !ok || totals[class] < floor {
				continue
			}
			if totals[class] > bestW {
				best, bestW = class, totals[class]
			}
		}
		return best, bestW
	}

	best, bestW := model.ClassOther, 0.0
	found := false
	for _, class := range model.CatalystClasses {
		w, ok := totals[class]
		if !ok {
			continue
		}
		if !found || w > bestW {
			best, bestW, found = class, w, true
		}
	}
	if bestW <= 0 {
		return model.ClassOther, 0
	}
	return best, bestW
}

// ClassifyBatch 批量分类，条目之间互不影响，并行执行
func (c *EventClassifier) ClassifyBatch(items []model.NewsItem) []model.ClassifiedItem {
	return iter.Map(items, func(item *model.NewsItem) model.ClassifiedItem {
		return c.Classify(*item)
	})
}
