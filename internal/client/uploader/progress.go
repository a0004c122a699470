package uploader

// Progress aggregates the state of a set of files
type Progress struct {
	Completed      int
	GlobalProgress float64
	GlobalComplete bool
	GlobalError    bool
}

// CalculateGlobalProgress weights each file progress by its size.
// Completed files count as 100 whatever they last reported.
func CalculateGlobalProgress(items []Item) Progress {
	if len(items) == 0 {
		return Progress{}
	}

	var p Progress
	var totalSize, loaded float64
	for _, item := range items {
		progress := item.Progress
		switch item.Status {
		case StatusCompleted:
			p.Completed++
			progress = 100
		case StatusError:
			p.GlobalError = true
		}
		totalSize += float64(item.Size)
		loaded += float64(item.Size) * progress / 100
	}

	if totalSize > 0 {
		p.GlobalProgress = loaded / totalSize * 100
	}
	p.GlobalComplete = p.Completed == len(items)
	return p
}
