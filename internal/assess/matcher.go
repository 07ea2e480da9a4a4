package assess

import (
	"sort"
	"strings"

	"github.com/ironclad-grc/ironclad/internal/frameworks"
)

const (
	keywordMatchThresholdConstant        = 2
	compliantEvidenceFileCountConstant   = 2
	controlDescriptionExcerptLimitNumber = 500
)

// matchControl scores every extracted evidence text against one control's
// common-evidence keywords and derives the preliminary status from how many
// files cleared the match threshold.
func matchControl(control frameworks.Control, extractedTexts map[string]string) Finding {
	controlKeywords := collectControlKeywords(control)

	matchedEvidenceFiles := make([]string, 0)
	for evidenceFileName, evidenceText := range extractedTexts {
		loweredText := strings.ToLower(evidenceText)
		keywordHits := 0
		for _, controlKeyword := range controlKeywords {
			if strings.Contains(loweredText, controlKeyword) {
				keywordHits++
			}
		}
		if keywordHits > keywordMatchThresholdConstant {
			matchedEvidenceFiles = append(matchedEvidenceFiles, evidenceFileName)
		}
	}
	sort.Strings(matchedEvidenceFiles)

	return Finding{
		ControlID:           control.ID,
		ControlName:         control.Name,
		ControlDescription:  excerptDescription(control.Description),
		CommonEvidenceTypes: control.CommonEvidence,
		EvidenceFound:       matchedEvidenceFiles,
		PreliminaryStatus:   statusForMatchCount(len(matchedEvidenceFiles)),
		PointsOfFocusCount:  len(control.PointsOfFocus),
		RequiresAIAnalysis:  true,
	}
}

func collectControlKeywords(control frameworks.Control) []string {
	controlKeywords := make([]string, 0)
	for _, evidenceType := range control.CommonEvidence {
		for _, keywordCandidate := range strings.Fields(strings.ToLower(evidenceType)) {
			controlKeywords = append(controlKeywords, keywordCandidate)
		}
	}
	return controlKeywords
}

func statusForMatchCount(matchedFileCount int) PreliminaryStatus {
	switch {
	case matchedFileCount >= compliantEvidenceFileCountConstant:
		return StatusPotentialCompliant
	case matchedFileCount == 1:
		return StatusPotentialPartial
	default:
		return StatusPotentialGap
	}
}

func excerptDescription(controlDescription string) string {
	if len(controlDescription) <= controlDescriptionExcerptLimitNumber {
		return controlDescription
	}
	return controlDescription[:controlDescriptionExcerptLimitNumber]
}
