package planner

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/itinera-ai/itinera/internal/types"
)

// generatorItem is one selected attraction as the generator describes it.
// Numeric fields are strict ints on purpose: a quoted "120" fails direct
// deserialization and escalates into the repair tiers that can fix it.
type generatorItem struct {
	AttractionID  string `json:"attractionId"`
	Name          string `json:"name"`
	VisitOrder    int    `json:"visitOrder"`
	SuggestedTime string `json:"suggestedTime"`
	Duration      int    `json:"duration"`
	Reason        string `json:"reason"`
}

// generatorPlan is the structured payload the generator is asked for.
// Aggregate fields (totalDuration, totalCost) are deliberately not decoded:
// totals are always recomputed from per-visit values.
type generatorPlan struct {
	ItineraryName       string          `json:"itineraryName"`
	SelectedAttractions []generatorItem `json:"selectedAttractions"`
}

type repairStatus int

const (
	repairOK repairStatus = iota
	repairExhausted
)

// repairResult is the tagged outcome threaded through the tiers.
type repairResult struct {
	Status     repairStatus
	Plan       *generatorPlan
	Provenance types.Provenance
	Tier       string
}

// repairRule is one narrow, idempotent text transform. Rules are applied in
// fixed order; deserialization is re-attempted after each one.
type repairRule struct {
	name  string
	apply func(string) string
}

var (
	whitespaceRunRe  = regexp.MustCompile(`[\r\n\t]+`)
	multiSpaceRe     = regexp.MustCompile(`  +`)
	splitTimeRe      = regexp.MustCompile(`"(\d{1,2}):\s*"\s*(\d{2})""?`)
	openNumberRe     = regexp.MustCompile(`("(?:visitOrder|duration|totalDuration|totalCost|estimatedCost)"\s*:\s*)"(\d+)\s*([,}\]])`)
	quotedNumberRe   = regexp.MustCompile(`("(?:visitOrder|duration|totalDuration|totalCost|estimatedCost)"\s*:\s*)"(\d+)"`)
	costWordRe       = regexp.MustCompile(`("(?:estimatedCost|totalCost|cost)"\s*:\s*)"?(free|cheap|budget|low|moderate|medium|expensive|high|luxury|premium)"?`)
	floatMinutesRe   = regexp.MustCompile(`("(?:visitOrder|duration|totalDuration|totalCost|estimatedCost)"\s*:\s*)(\d+)\.0+([,}\]])`)
	quotedBoolRe     = regexp.MustCompile(`(:\s*)"(true|false)"`)
	trailingCommaRe  = regexp.MustCompile(`,\s*([}\]])`)
)

// repairRules is the ordered tier-3 sequence. Each rule's output no longer
// matches its own pattern, so the whole sequence is idempotent.
var repairRules = []repairRule{
	{
		name: "collapse-whitespace",
		apply: func(s string) string {
			s = whitespaceRunRe.ReplaceAllString(s, " ")
			return multiSpaceRe.ReplaceAllString(s, " ")
		},
	},
	{
		name: "join-split-time",
		apply: func(s string) string {
			return splitTimeRe.ReplaceAllString(s, `"$1:$2"`)
		},
	},
	{
		name: "close-unterminated-number",
		apply: func(s string) string {
			return openNumberRe.ReplaceAllString(s, `${1}${2}${3}`)
		},
	},
	{
		name: "unquote-number",
		apply: func(s string) string {
			return quotedNumberRe.ReplaceAllString(s, `${1}${2}`)
		},
	},
	{
		name: "truncate-float-minutes",
		apply: func(s string) string {
			return floatMinutesRe.ReplaceAllString(s, `${1}${2}${3}`)
		},
	},
	{
		name: "cost-word-to-number",
		apply: func(s string) string {
			return costWordRe.ReplaceAllStringFunc(s, func(match string) string {
				sub := costWordRe.FindStringSubmatch(match)
				return sub[1] + strconv.Itoa(types.ParsePriceTier(sub[2]).CostEstimate())
			})
		},
	},
	{
		name: "unquote-bool",
		apply: func(s string) string {
			return quotedBoolRe.ReplaceAllString(s, `${1}${2}`)
		},
	},
	{
		name: "strip-trailing-separator",
		apply: func(s string) string {
			return trailingCommaRe.ReplaceAllString(s, `$1`)
		},
	},
	{
		name:  "balance-delimiters",
		apply: closeUnbalancedDelimiters,
	},
}

// RepairPipeline turns raw generator text into a validated plan or gives up
// explicitly. Stateless and safe for concurrent use.
type RepairPipeline struct {
	logger *slog.Logger
}

func NewRepairPipeline(logger *slog.Logger) *RepairPipeline {
	return &RepairPipeline{logger: logger}
}

// Run escalates through the repair tiers and returns the first success.
// Candidates bound tier-4 extraction: only identifiers and names present in
// the supplied catalog can come back.
func (p *RepairPipeline) Run(raw string, candidates []types.Attraction) repairResult {
	candidate := largestBraceSubstring(stripCodeFences(raw))

	// Tier 1: direct deserialization of the brace-delimited substring.
	if candidate != "" {
		if plan, ok := tryParsePlan(candidate); ok {
			return repairResult{Status: repairOK, Plan: plan, Provenance: types.ProvenanceGenerator, Tier: "direct"}
		}
	}

	// Tier 2: reconstruct the selection list from fully-closed items.
	if candidate != "" {
		if rebuilt, ok := reconstructSelectionList(candidate); ok {
			if plan, parsed := tryParsePlan(rebuilt); parsed {
				return repairResult{Status: repairOK, Plan: plan, Provenance: types.ProvenanceRepaired, Tier: "reconstruct"}
			}
		}
	}

	// Tier 3: ordered text-normalization passes, re-parsing after each.
	if candidate != "" {
		repaired := candidate
		for _, rule := range repairRules {
			repaired = rule.apply(repaired)
			if plan, ok := tryParsePlan(repaired); ok {
				p.logger.Debug("Repair rule sequence recovered generator output", slog.String("last_rule", rule.name))
				return repairResult{Status: repairOK, Plan: plan, Provenance: types.ProvenanceRepaired, Tier: "normalize"}
			}
		}
		// The rules may have fixed item bodies while the list itself is still
		// truncated; retry reconstruction on the normalized text.
		if rebuilt, ok := reconstructSelectionList(repaired); ok {
			if plan, parsed := tryParsePlan(rebuilt); parsed {
				return repairResult{Status: repairOK, Plan: plan, Provenance: types.ProvenanceRepaired, Tier: "normalize+reconstruct"}
			}
		}
	}

	// Tier 4: heuristic extraction straight from the raw text.
	if items := extractFromText(raw, candidates); len(items) > 0 {
		return repairResult{
			Status:     repairOK,
			Plan:       &generatorPlan{SelectedAttractions: items},
			Provenance: types.ProvenanceTextExtraction,
			Tier:       "extract",
		}
	}

	return repairResult{Status: repairExhausted}
}

// tryParsePlan deserializes and validates the required shape: a non-empty
// selection list whose items carry an identifier or at least a name.
func tryParsePlan(s string) (*generatorPlan, bool) {
	var plan generatorPlan
	if err := json.Unmarshal([]byte(s), &plan); err != nil {
		return nil, false
	}
	valid := plan.SelectedAttractions[:0:0]
	for _, item := range plan.SelectedAttractions {
		if item.AttractionID == "" && item.Name == "" {
			continue
		}
		valid = append(valid, item)
	}
	if len(valid) == 0 {
		return nil, false
	}
	plan.SelectedAttractions = valid
	return &plan, true
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// largestBraceSubstring returns the substring from the first '{' to the last
// '}', or from the first '{' to the end when no closing brace exists.
func largestBraceSubstring(s string) string {
	first := strings.Index(s, "{")
	if first == -1 {
		return ""
	}
	last := strings.LastIndex(s, "}")
	if last <= first {
		return s[first:]
	}
	return s[first : last+1]
}

// reconstructSelectionList truncates the selection list at its last fully
// closed item and re-closes the enclosing structures. Fails when no complete
// item can be found.
func reconstructSelectionList(s string) (string, bool) {
	keyIdx := strings.Index(s, `"selectedAttractions"`)
	if keyIdx == -1 {
		return "", false
	}
	listStart := strings.Index(s[keyIdx:], "[")
	if listStart == -1 {
		return "", false
	}
	listStart += keyIdx

	depth := 0
	inString := false
	escaped := false
	lastComplete := -1
	for i := listStart + 1; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					lastComplete = i
				}
			}
		case ']':
			if !inString && depth == 0 {
				// List closed normally; nothing to reconstruct.
				return "", false
			}
		}
	}
	if lastComplete == -1 {
		return "", false
	}

	prefix := s[:keyIdx]
	head := strings.LastIndex(prefix, "{")
	if head == -1 {
		return "", false
	}
	return s[head:lastComplete+1] + "]}", true
}

// closeUnbalancedDelimiters appends the closing brackets and braces that are
// still open outside string literals, innermost first.
func closeUnbalancedDelimiters(s string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				stack = append(stack, c)
			}
		case '}':
			if !inString && len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if !inString && len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if inString {
		s += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			s += "}"
		} else {
			s += "]"
		}
	}
	return s
}
