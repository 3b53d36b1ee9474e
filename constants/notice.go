package constants

// NoticeType is the canonical classification of a gazette notice.
type NoticeType string

const (
	NoticeEstablishment NoticeType = "KURULUS"
	NoticeAmendment     NoticeType = "DEGISIKLIK"
	NoticeClosure       NoticeType = "KAPANIS"
	NoticeOther         NoticeType = "DIGER"
)
