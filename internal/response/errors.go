package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenRevoked       ErrCode = "TOKEN_REVOKED"
	ErrUserNotFound       ErrCode = "USER_NOT_FOUND"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden      ErrCode = "FORBIDDEN"
	ErrNotOwner       ErrCode = "NOT_OWNER"
	ErrRoleNotAllowed ErrCode = "ROLE_NOT_ALLOWED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrUnknownSource  ErrCode = "UNKNOWN_SOURCE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrQuestionNotFound ErrCode = "QUESTION_NOT_FOUND"
	ErrExamNotFound     ErrCode = "EXAM_NOT_FOUND"
	ErrClassNotFound    ErrCode = "CLASS_NOT_FOUND"
	ErrFileNotFound     ErrCode = "FILE_NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrEmailTaken       ErrCode = "EMAIL_TAKEN"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrNoQuestions       ErrCode = "NO_QUESTIONS"
	ErrExamNotAssigned   ErrCode = "EXAM_NOT_ASSIGNED"
	ErrInvalidClassCode  ErrCode = "INVALID_CLASS_CODE"
	ErrAlreadySubmitted  ErrCode = "ALREADY_SUBMITTED"
	ErrAnswerOutOfBounds ErrCode = "ANSWER_OUT_OF_BOUNDS"

	// ─── Generation ────────────────────────────────────────────────────
	ErrGenerationFailed ErrCode = "GENERATION_FAILED"
	ErrAIParse          ErrCode = "AI_RESPONSE_UNPARSABLE"
	ErrServiceDisabled  ErrCode = "SERVICE_NOT_CONFIGURED"
	ErrUpstream         ErrCode = "UPSTREAM_ERROR"

	// ─── Files ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrTooManyFiles    ErrCode = "TOO_MANY_FILES"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

var messages = map[ErrCode]string{
	ErrInvalidCredentials: "E-posta veya şifre hatalı.",
	ErrTokenRequired:      "Yetkilendirme belirteci gerekli.",
	ErrTokenInvalid:       "Geçersiz yetkilendirme belirteci.",
	ErrTokenRevoked:       "Oturum sonlandırılmış. Lütfen tekrar giriş yapın.",
	ErrUserNotFound:       "Kullanıcı bulunamadı.",

	ErrForbidden:      "Bu kaynağa erişim yetkiniz yok.",
	ErrNotOwner:       "Bu işlem için yetkiniz yok.",
	ErrRoleNotAllowed: "Bu işlem rolünüz için izinli değil.",

	ErrValidation:     "Doğrulama başarısız. Lütfen girdilerinizi kontrol edin.",
	ErrInvalidID:      "Geçersiz kimlik biçimi.",
	ErrInvalidPayload: "Geçersiz istek gövdesi.",
	ErrUnknownSource:  "Bilinmeyen soru kaynağı.",

	ErrNotFound:         "Kaynak bulunamadı.",
	ErrQuestionNotFound: "Soru bulunamadı.",
	ErrExamNotFound:     "Sınav bulunamadı.",
	ErrClassNotFound:    "Sınıf bulunamadı.",
	ErrFileNotFound:     "Dosya bulunamadı.",
	ErrConflict:         "Kaynak zaten mevcut.",
	ErrEmailTaken:       "Bu e-posta adresi zaten kullanımda.",

	ErrNoQuestions:       "Soru oluşturulamadı.",
	ErrExamNotAssigned:   "Bu sınav size atanmamış.",
	ErrInvalidClassCode:  "Geçersiz sınıf kodu.",
	ErrAlreadySubmitted:  "Bu sınavı zaten teslim ettiniz.",
	ErrAnswerOutOfBounds: "Cevap, sınavda olmayan bir soruya ait.",

	ErrGenerationFailed: "Soru üretimi başarısız oldu.",
	ErrAIParse:          "AI yanıtı işlenemedi.",
	ErrServiceDisabled:  "Bu hizmet yapılandırılmamış.",
	ErrUpstream:         "Harici servis hatası.",

	ErrFileRequired:    "Dosya yüklenmedi.",
	ErrUnsupportedFile: "Desteklenmeyen dosya türü.",
	ErrFileTooLarge:    "Dosya boyutu sınırı aşıldı.",
	ErrTooManyFiles:    "Çok fazla dosya gönderildi.",

	ErrRateLimitExceeded: "Çok fazla istek. Lütfen daha sonra tekrar deneyin.",

	ErrInternal: "Sunucu hatası.",
}

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "Beklenmeyen bir hata oluştu."
}
