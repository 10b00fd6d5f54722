package domain

import "errors"

// Message keys for user-visible status and error banners.
const (
	MsgStageIngesting = "stage.ingesting"
	MsgStageThinking  = "stage.thinking"
	MsgStageSearching = "stage.searching"
	MsgStageFetching  = "stage.fetching_product"
	MsgStageRendering = "stage.rendering"
	MsgDone           = "status.done"

	MsgErrImageUnreadable = "error.image_unreadable"
	MsgErrFetchFailed     = "error.fetch_failed"
	MsgErrNoProducts      = "error.no_products"
	MsgErrNoImage         = "error.no_image_returned"
	MsgErrService         = "error.service_unavailable"
	MsgErrNoActiveImage   = "error.no_active_image"
	MsgErrInFlight        = "error.action_in_flight"
)

var messages = map[string]map[string]string{
	"en": {
		MsgStageIngesting: "Loading your photo...",
		MsgStageThinking:  "Working out what to change...",
		MsgStageSearching: "Searching for matching products...",
		MsgStageFetching:  "Grabbing the product photo...",
		MsgStageRendering: "Rendering your new look...",
		MsgDone:           "Done",

		MsgErrImageUnreadable: "Failed to load the image.",
		MsgErrFetchFailed:     "Could not retrieve the image.",
		MsgErrNoProducts:      "No products found. Try a different prompt.",
		MsgErrNoImage:         "The model did not return an image. Please try again.",
		MsgErrService:         "The service is unavailable right now. Please try again.",
		MsgErrNoActiveImage:   "Upload a photo or pick an example first.",
		MsgErrInFlight:        "Another action is still running.",
	},
	"id": {
		MsgStageIngesting: "Memuat foto Anda...",
		MsgStageThinking:  "Menentukan perubahan yang tepat...",
		MsgStageSearching: "Mencari produk yang cocok...",
		MsgStageFetching:  "Mengambil foto produk...",
		MsgStageRendering: "Merender tampilan baru Anda...",
		MsgDone:           "Selesai",

		MsgErrImageUnreadable: "Gagal memuat gambar.",
		MsgErrFetchFailed:     "Tidak dapat mengambil gambar.",
		MsgErrNoProducts:      "Produk tidak ditemukan. Coba prompt lain.",
		MsgErrNoImage:         "Model tidak mengembalikan gambar. Silakan coba lagi.",
		MsgErrService:         "Layanan sedang tidak tersedia. Silakan coba lagi.",
		MsgErrNoActiveImage:   "Unggah foto atau pilih contoh terlebih dahulu.",
		MsgErrInFlight:        "Aksi lain masih berjalan.",
	},
}

// Localize resolves a message key for the given locale, falling back to
// English and finally to the key itself so a missing entry stays visible.
func Localize(locale, key string) string {
	if byLocale, ok := messages[locale]; ok {
		if msg, ok := byLocale[key]; ok {
			return msg
		}
	}
	if msg, ok := messages["en"][key]; ok {
		return msg
	}
	return key
}

// MessageKeyForError maps a domain error to its banner message key.
func MessageKeyForError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrImageUnreadable):
		return MsgErrImageUnreadable
	case errors.Is(err, ErrFetchFailed):
		return MsgErrFetchFailed
	case errors.Is(err, ErrNoProducts):
		return MsgErrNoProducts
	case errors.Is(err, ErrNoImageReturned):
		return MsgErrNoImage
	case errors.Is(err, ErrNoActiveImage):
		return MsgErrNoActiveImage
	case errors.Is(err, ErrActionInFlight):
		return MsgErrInFlight
	default:
		return MsgErrService
	}
}
