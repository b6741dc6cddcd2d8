package repository

import "github.com/propertyops/compliance-docs/internal/entity"

// pageAggregates computes the read-model figures from page rows: the mean
// of scored confidences (nil when nothing has been scored) and the sorted
// list of page numbers under the low-confidence threshold. Unscored pages
// contribute to neither figure.
func pageAggregates(pages []entity.Page, threshold float32) (*float32, []int) {
	var sum float64
	scored := 0
	lowConf := []int{}
	for _, p := range pages {
		if p.Confidence == nil {
			continue
		}
		sum += float64(*p.Confidence)
		scored++
		if *p.Confidence < threshold {
			lowConf = append(lowConf, p.Number)
		}
	}
	if scored == 0 {
		return nil, lowConf
	}
	avg := float32(sum / float64(scored))
	return &avg, lowConf
}
