package planner

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/itinera-ai/itinera/internal/types"
)

const maxContainmentItems = 4

var (
	anchorFieldRe = regexp.MustCompile(`"attractionId"\s*:`)
	idFieldRe     = regexp.MustCompile(`"attractionId"\s*:\s*"([^"]+)"`)
	nameFieldRe   = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
	clockRe       = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	durationRe    = regexp.MustCompile(`"duration"\s*:\s*"?(\d+)`)
	reasonFieldRe = regexp.MustCompile(`"(?:reason|rationale)"\s*:\s*"([^"]+)"`)
)

// extractFromText is the last structured-repair resort: it slices the raw
// text into per-item blocks around the recurring anchor field and pulls
// fields out of each block, keeping only items that resolve against the
// candidate catalog. When no anchored blocks exist it falls back to plain
// name containment in catalog order.
func extractFromText(raw string, candidates []types.Attraction) []generatorItem {
	byID := make(map[string]types.Attraction, len(candidates))
	for _, a := range candidates {
		byID[a.ID] = a
	}

	anchors := anchorFieldRe.FindAllStringIndex(raw, -1)
	if len(anchors) > 0 {
		items := make([]generatorItem, 0, len(anchors))
		for i, anchor := range anchors {
			end := len(raw)
			if i+1 < len(anchors) {
				end = anchors[i+1][0]
			}
			block := raw[anchor[0]:end]

			item, ok := extractItemFromBlock(block, i, byID)
			if ok {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			return items
		}
	}

	return extractByNameContainment(raw, candidates)
}

func extractItemFromBlock(block string, order int, byID map[string]types.Attraction) (generatorItem, bool) {
	idMatch := idFieldRe.FindStringSubmatch(block)
	if idMatch == nil {
		return generatorItem{}, false
	}
	attraction, known := byID[idMatch[1]]
	if !known {
		// Fabricated identifiers never survive extraction.
		return generatorItem{}, false
	}

	item := generatorItem{
		AttractionID: attraction.ID,
		Name:         attraction.Name,
		VisitOrder:   order,
	}
	if m := nameFieldRe.FindStringSubmatch(block); m != nil {
		item.Name = m[1]
	}
	if m := clockRe.FindStringSubmatch(block); m != nil {
		item.SuggestedTime = m[0]
	}
	if m := durationRe.FindStringSubmatch(block); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			item.Duration = v
		}
	}
	if m := reasonFieldRe.FindStringSubmatch(block); m != nil {
		item.Reason = m[1]
	}
	return item, true
}

// extractByNameContainment treats any candidate whose name appears verbatim
// in the raw text as selected, in catalog order.
func extractByNameContainment(raw string, candidates []types.Attraction) []generatorItem {
	lowered := strings.ToLower(raw)
	var items []generatorItem
	for _, a := range candidates {
		if len(items) >= maxContainmentItems {
			break
		}
		if a.Name == "" || !strings.Contains(lowered, strings.ToLower(a.Name)) {
			continue
		}
		items = append(items, generatorItem{
			AttractionID: a.ID,
			Name:         a.Name,
			VisitOrder:   len(items),
		})
	}
	return items
}
