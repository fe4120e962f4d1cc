package models

// Shared enumerations. Genres, languages, and statuses are used by more
// than one entity, so the value sets live here instead of per field.

var Genres = []string{
	"Fiction",
	"NonFiction",
	"Mystery",
	"Thriller",
	"Romance",
	"SciFi",
	"Fantasy",
	"Horror",
	"Biography",
	"History",
	"SelfHelp",
	"Poetry",
	"Drama",
	"Children",
}

var Languages = []string{
	"English",
	"Spanish",
	"French",
	"German",
	"Italian",
	"Portuguese",
	"Russian",
	"Japanese",
	"Chinese",
	"Arabic",
	"Hindi",
	"Other",
}

// Book formats.
const (
	FormatHardcover = "Hardcover"
	FormatPaperback = "Paperback"
	FormatEBook     = "EBook"
	FormatAudioBook = "AudioBook"
)

var BookFormats = []string{FormatHardcover, FormatPaperback, FormatEBook, FormatAudioBook}

// Book lifecycle statuses.
const (
	BookPublished  = "Published"
	BookUpcoming   = "Upcoming"
	BookOutOfPrint = "OutOfPrint"
	BookCancelled  = "Cancelled"
)

var BookStatuses = []string{BookPublished, BookUpcoming, BookOutOfPrint, BookCancelled}

// Author statuses.
const (
	AuthorActive   = "Active"
	AuthorRetired  = "Retired"
	AuthorDeceased = "Deceased"
)

var AuthorStatuses = []string{AuthorActive, AuthorRetired, AuthorDeceased}

// Publisher statuses.
const (
	PublisherActive   = "Active"
	PublisherInactive = "Inactive"
	PublisherClosed   = "Closed"
)

var PublisherStatuses = []string{PublisherActive, PublisherInactive, PublisherClosed}

// Review moderation statuses. Only Published reviews count toward the
// target's rating aggregate.
const (
	ReviewPublished = "Published"
	ReviewPending   = "Pending"
	ReviewHidden    = "Hidden"
	ReviewFlagged   = "Flagged"
)

var ReviewStatuses = []string{ReviewPublished, ReviewPending, ReviewHidden, ReviewFlagged}

// User roles.
const (
	RoleReader = "reader"
	RoleAuthor = "author"
	RoleAdmin  = "admin"
)

var ValidRoles = []string{RoleReader, RoleAuthor, RoleAdmin}

// Reading history statuses.
const (
	ReadingWantToRead = "WantToRead"
	ReadingInProgress = "Reading"
	ReadingFinished   = "Finished"
	ReadingAbandoned  = "Abandoned"
)

var ReadingStatuses = []string{ReadingWantToRead, ReadingInProgress, ReadingFinished, ReadingAbandoned}

// In lists one of the enumeration values, case-sensitive.
func In(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// AllIn reports whether every value is a member of the enumeration.
func AllIn(list []string, vals []string) bool {
	for _, v := range vals {
		if !In(list, v) {
			return false
		}
	}
	return true
}
