package extract

import (
	"github.com/sells-group/prospect-research/internal/model"
)

// MergeCompany copies every non-empty field of src onto dst and returns how
// many fields it set. Empty values in src never clear dst.
func MergeCompany(dst, src *model.Company) int {
	if src == nil {
		return 0
	}
	n := 0
	n += mergeString(&dst.Description, src.Description)
	n += mergeString(&dst.Industry, src.Industry)
	n += mergeString(&dst.Headquarters, src.Headquarters)
	n += mergeString(&dst.Founded, src.Founded)
	n += mergeString(&dst.Size, src.Size)
	n += mergeString(&dst.CEO, src.CEO)
	n += mergeString(&dst.Website, src.Website)
	if !src.ExecutiveSummary.IsEmpty() {
		dst.ExecutiveSummary = src.ExecutiveSummary
		n++
	}
	return n
}

// MergeProspect copies every non-empty field of src onto dst and returns how
// many fields it set.
func MergeProspect(dst, src *model.Prospect) int {
	if src == nil {
		return 0
	}
	n := 0
	n += mergeString(&dst.Title, src.Title)
	n += mergeString(&dst.Company, src.Company)
	n += mergeString(&dst.Location, src.Location)
	n += mergeSlice(&dst.Experience, src.Experience)
	n += mergeSlice(&dst.Education, src.Education)
	n += mergeString(&dst.LinkedInURL, src.LinkedInURL)
	return n
}

func mergeString(dst **string, src *string) int {
	if src == nil || *src == "" {
		return 0
	}
	v := *src
	*dst = &v
	return 1
}

func mergeSlice(dst *[]string, src []string) int {
	if len(src) == 0 {
		return 0
	}
	*dst = append([]string(nil), src...)
	return 1
}
