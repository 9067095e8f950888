package forecast

import (
	"fmt"
	"strings"
)

// ClassifyTier maps a predicted temperature onto a comfort tier.
func ClassifyTier(celsius float64) Tier {
	switch {
	case celsius < ColdBelow:
		return TierCold
	case celsius < CoolBelow:
		return TierCool
	case celsius < WarmBelow:
		return TierWarm
	case celsius < HotBelow:
		return TierHot
	default:
		return TierVeryHot
	}
}

// ClassifyTrend compares a prediction with the previous day's.
func ClassifyTrend(prev, curr float64) Trend {
	diff := curr - prev
	switch {
	case diff > TrendTolerance:
		return TrendRising
	case diff < -TrendTolerance:
		return TrendFalling
	default:
		return TrendStable
	}
}

// Describe renders one sentence per forecast day. condition is today's free-text
// weather label and only influences day 0; pass "" when none is known.
func Describe(days []Day, condition string) ([]Description, error) {
	for i, d := range days {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if d.Index != i {
			return nil, invalidDay(d.Index, fmt.Sprintf("expected index %d", i))
		}
	}

	// A blank label counts as no label, so day 0 gets the tier sentence rather
	// than a bare "Expect X temperatures". Day 0 never carries a trend clause.
	condition = strings.ToLower(strings.TrimSpace(condition))
	out := make([]Description, len(days))
	for i, d := range days {
		tier := ClassifyTier(d.Prediction)
		trend := TrendInitial
		if i > 0 {
			trend = ClassifyTrend(days[i-1].Prediction, d.Prediction)
		}

		var sentence string
		if i == 0 && condition != "" {
			sentence = conditionSentence(tier, condition)
		} else {
			sentence = trendSentence(tier, trend)
		}
		out[i] = Description{Tier: tier, Trend: trend, Sentence: sentence}
	}
	return out, nil
}

// conditionSentence checks cloud, then rain/shower, then clear/sun; first match wins.
func conditionSentence(tier Tier, condition string) string {
	switch {
	case strings.Contains(condition, "cloud"):
		return fmt.Sprintf("Expect %s temperatures with continued cloud cover", tier)
	case strings.Contains(condition, "rain"), strings.Contains(condition, "shower"):
		return fmt.Sprintf("Expect %s temperatures with a chance of continued rain", tier)
	case strings.Contains(condition, "clear"), strings.Contains(condition, "sun"):
		return fmt.Sprintf("Expect %s temperatures with continued sunshine", tier)
	default:
		return fmt.Sprintf("Expect %s temperatures", tier)
	}
}

func trendSentence(tier Tier, trend Trend) string {
	day := string(tier) + " day"
	if phrase := trendPhrase(trend); phrase != "" {
		day += ", " + phrase
	}
	switch tier {
	case TierHot, TierVeryHot:
		return fmt.Sprintf("Expect a %s. Stay hydrated and use sun protection", day)
	case TierWarm:
		return fmt.Sprintf("Expect a pleasant %s", day)
	default:
		return fmt.Sprintf("Expect a %s. Consider bringing a jacket", day)
	}
}

func trendPhrase(trend Trend) string {
	switch trend {
	case TrendRising:
		return "warmer than previous day"
	case TrendFalling:
		return "cooler than previous day"
	case TrendStable:
		return "similar to previous day"
	default:
		return ""
	}
}
