package ui

import "empower/api"

const dateLayout = "Jan 2, 2006"

func formatDate(t api.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

// availability returns the badge label and class for a book.
func availability(b api.Book) (string, string) {
	if b.IsAvailable {
		return "Available", "badge badge-available"
	}
	return "Borrowed", "badge badge-borrowed"
}

func borrowLabel(inFlight bool) string {
	if inFlight {
		return "Borrowing..."
	}
	return "Borrow"
}

func returnLabel(inFlight bool) string {
	if inFlight {
		return "Returning..."
	}
	return "Return Book"
}

// loanStatus describes a borrowing row.
func loanStatus(b api.Borrowing) (string, string) {
	if b.Returned() {
		return "Returned", "status-returned"
	}
	return "Currently Borrowed", "status-active"
}
