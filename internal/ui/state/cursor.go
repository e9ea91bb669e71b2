package state

// MoveCursorHome moves the cursor to the first visible node.
func (n *Navigator) MoveCursorHome() bool {
	old := n.Cursor
	n.Cursor = 0
	return old != n.Cursor
}

// MoveCursorEnd moves the cursor to the last visible node.
func (n *Navigator) MoveCursorEnd() bool {
	old := n.Cursor
	n.Cursor = len(n.visible) - 1
	return old != n.Cursor
}

// MoveCursorPageUp moves the cursor up by the given page size.
func (n *Navigator) MoveCursorPageUp(maxVisible int) bool {
	return n.moveCursorBy(-n.pageSize(maxVisible))
}

// MoveCursorPageDown moves the cursor down by the given page size.
func (n *Navigator) MoveCursorPageDown(maxVisible int) bool {
	return n.moveCursorBy(n.pageSize(maxVisible))
}

func (n *Navigator) moveCursorBy(delta int) bool {
	old := n.Cursor
	n.Cursor += delta
	if n.Cursor < 0 {
		n.Cursor = 0
	}
	if n.Cursor >= len(n.visible) {
		n.Cursor = len(n.visible) - 1
	}
	return n.Cursor != old
}

func (n *Navigator) pageSize(maxVisible int) int {
	total := len(n.visible)
	size := maxVisible
	if size <= 0 || size > total {
		size = total
	}
	if size < 1 {
		size = 1
	}
	return size
}

// EnsureCursorVisible adjusts the viewport offset so the cursor stays inside
// a window of maxVisible rows. The window size is remembered for paging.
func (n *Navigator) EnsureCursorVisible(maxVisible int) {
	n.window = maxVisible
	if n.Cursor < 0 {
		n.Cursor = 0
	}
	if n.Cursor >= len(n.visible) {
		n.Cursor = len(n.visible) - 1
	}
	if maxVisible <= 0 {
		n.ViewportOffset = 0
		return
	}
	maxOffset := len(n.visible) - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if n.ViewportOffset > maxOffset {
		n.ViewportOffset = maxOffset
	}
	if n.ViewportOffset < 0 {
		n.ViewportOffset = 0
	}
	if n.Cursor < n.ViewportOffset {
		n.ViewportOffset = n.Cursor
	}
	upper := n.ViewportOffset + maxVisible - 1
	if n.Cursor > upper {
		n.ViewportOffset = n.Cursor - maxVisible + 1
		if n.ViewportOffset > maxOffset {
			n.ViewportOffset = maxOffset
		}
	}
}
