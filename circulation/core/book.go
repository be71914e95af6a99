package core

// Book is a catalog entry. AvailableCopies only changes through issue and return.
type Book struct {
	ID              BookIDString
	Title           string
	Author          string
	ISBN            string
	Subject         string
	TotalCopies     int
	AvailableCopies int
}

// IssuedCopies returns the number of copies currently out on loan.
func (b Book) IssuedCopies() int {
	return b.TotalCopies - b.AvailableCopies
}
