package features

// splitLayers partitions a mixed-altitude railway into contiguous underground
// and overground runs. Vertices carrying an opacity take no part in either
// layer; the returned line is the input with opacities stripped. A vertex
// next to an underground vertex is also part of the underground run so that
// runs of both layers meet.
func splitLayers(line Line) (underground, overground []Line, stripped Line) {
	below := func(i int) bool {
		return i >= 0 && i < len(line) && line[i].Z < 0
	}

	stripped = line.Clone()
	ug := []Line{nil}
	og := []Line{nil}

	for i, v := range line {
		if v.HasW {
			stripped[i].W, stripped[i].HasW = 0, false
			continue
		}

		if below(i) || below(i-1) || below(i+1) {
			ug[len(ug)-1] = append(ug[len(ug)-1], v)
			if !below(i) && below(i-1) {
				ug = append(ug, nil)
			}
		}
		if !below(i) {
			og[len(og)-1] = append(og[len(og)-1], v)
			if below(i + 1) {
				og = append(og, nil)
			}
		}
	}

	if len(ug[len(ug)-1]) == 0 {
		ug = ug[:len(ug)-1]
	}
	if len(og[len(og)-1]) == 0 {
		og = og[:len(og)-1]
	}
	return ug, og, stripped
}
