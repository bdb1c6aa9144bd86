package generator

import "github.com/akilliyazili/yazili-backend/internal/model"

type bankQuestion struct {
	Text          string
	Type          model.QuestionType
	Options       []string
	CorrectAnswer string
	Explanation   string
}

const (
	mc = model.QuestionTypeMultipleChoice
	fb = model.QuestionTypeFillBlank
	oe = model.QuestionTypeOpenEnded
	tf = model.QuestionTypeTrueFalse
)

var subjectPools = map[string][]bankQuestion{
	"Matematik - Türev": {
		{
			Text:          "f(x) = x² fonksiyonunun türevi nedir?",
			Type:          mc,
			Options:       []string{"A) f'(x) = 2x", "B) f'(x) = x", "C) f'(x) = 2x²", "D) f'(x) = x²"},
			CorrectAnswer: "A) f'(x) = 2x",
			Explanation:   "Kuvvet kuralına göre, x² nin türevi 2x olur.",
		},
		{
			Text:          "f(x) = sin(x) fonksiyonunun türevi nedir?",
			Type:          mc,
			Options:       []string{"A) f'(x) = cos(x)", "B) f'(x) = -sin(x)", "C) f'(x) = tan(x)", "D) f'(x) = -cos(x)"},
			CorrectAnswer: "A) f'(x) = cos(x)",
			Explanation:   "sin(x) fonksiyonunun türevi cos(x) dir.",
		},
		{
			Text:          "f(x) = e^x fonksiyonunun türevi nedir?",
			Type:          mc,
			Options:       []string{"A) f'(x) = e^x", "B) f'(x) = x·e^x", "C) f'(x) = e^(x-1)", "D) f'(x) = xe^(x-1)"},
			CorrectAnswer: "A) f'(x) = e^x",
			Explanation:   "e^x fonksiyonunun türevi yine kendisidir, yani e^x dir.",
		},
		{
			Text:          "f(x) = ln(x) fonksiyonunun türevi nedir?",
			Type:          mc,
			Options:       []string{"A) f'(x) = 1/x", "B) f'(x) = x", "C) f'(x) = 1", "D) f'(x) = ln(x-1)"},
			CorrectAnswer: "A) f'(x) = 1/x",
			Explanation:   "ln(x) fonksiyonunun türevi 1/x dir.",
		},
		{
			Text:          "f(x) = x³ + 2x² - 5x + 3 fonksiyonunun türevi nedir?",
			Type:          mc,
			Options:       []string{"A) f'(x) = 3x² + 4x - 5", "B) f'(x) = 3x² + 4x + 5", "C) f'(x) = 3x² + 2x - 5", "D) f'(x) = 3x² + 4x"},
			CorrectAnswer: "A) f'(x) = 3x² + 4x - 5",
			Explanation:   "Polinomun terim terim türevi alınır. x³ ün türevi 3x², 2x² nin türevi 4x, -5x in türevi -5, sabit terimin türevi 0 dır.",
		},
		{
			Text:          "Türev alma işleminde zincir kuralı ne için kullanılır?",
			Type:          oe,
			CorrectAnswer: "Zincir kuralı, bir fonksiyonun içine başka bir fonksiyon yerleştirildiğinde (bileşik fonksiyon) türev almak için kullanılır.",
			Explanation:   "Eğer f(g(x)) şeklinde bir bileşik fonksiyon varsa, türevi f'(g(x)) · g'(x) olur.",
		},
		{
			Text:    "f(x) = x² + 3x + 2 fonksiyonunun x = 1 noktasındaki teğetinin denklemi nedir?",
			Type:    mc,
			Options: []string{"A) y = 5x - 2", "B) y = 5x", "C) y = 5x + 1", "D) y = 5x - 1"},
			// f(1) = 6 and f'(1) = 5, so the tangent is y = 5x + 1.
			CorrectAnswer: "C) y = 5x + 1",
			Explanation:   "f'(x) = 2x + 3, f'(1) = 2·1 + 3 = 5. Teğetin denklemi y - f(1) = f'(1)(x - 1). f(1) = 1² + 3·1 + 2 = 6. Demek ki y - 6 = 5(x - 1) => y = 5x - 5 + 6 => y = 5x + 1.",
		},
		{
			Text:          "Bir fonksiyonun ikinci türevi pozitifse, fonksiyon bu aralıkta nasıl bir davranış gösterir?",
			Type:          mc,
			Options:       []string{"A) Yukarı doğru içbükey", "B) Aşağı doğru içbükey", "C) Artan", "D) Azalan"},
			CorrectAnswer: "A) Yukarı doğru içbükey",
			Explanation:   "Bir fonksiyonun ikinci türevi pozitifse, fonksiyon yukarı doğru içbükey (konveks) olur.",
		},
		{
			Text:          "f(x) = x² - 4x + 4 fonksiyonunun minimum değerini bulunuz.",
			Type:          mc,
			Options:       []string{"A) 0", "B) 4", "C) -4", "D) 2"},
			CorrectAnswer: "A) 0",
			Explanation:   `f'(x) = 2x - 4. Kritik nokta için f'(x) = 0 => 2x - 4 = 0 => x = 2. f(2) = 2² - 4·2 + 4 = 4 - 8 + 4 = 0. İkinci türev f"(x) = 2 > 0 olduğundan bu bir minimum noktasıdır.`,
		},
		{
			Text:          "Türev alma işleminde çarpım kuralı nasıl ifade edilir?",
			Type:          fb,
			CorrectAnswer: "(f·g)'(x) = f'(x)·g(x) + f(x)·g'(x)",
			Explanation:   "İki fonksiyonun çarpımının türevi, birinci fonksiyonun türevi ile ikinci fonksiyon çarpımı artı birinci fonksiyon ile ikinci fonksiyonun türevi çarpımına eşittir.",
		},
	},
	"Fizik - Mekanik": {
		{
			Text:          "Bir cismin ivmesi nedir?",
			Type:          mc,
			Options:       []string{"A) Hızın zamana göre değişimi", "B) Konumun zamana göre değişimi", "C) Kuvvetin kütleye oranı", "D) Momentumun zamana göre değişimi"},
			CorrectAnswer: "A) Hızın zamana göre değişimi",
			Explanation:   "İvme, hızın zamana göre türevi olarak tanımlanır.",
		},
		{
			Text:          "Newton'un ikinci hareket yasası neyi ifade eder?",
			Type:          mc,
			Options:       []string{"A) F = m·a", "B) F = m/a", "C) F = m·v", "D) F = m·g"},
			CorrectAnswer: "A) F = m·a",
			Explanation:   "Newton'un ikinci yasası, bir cisme etki eden net kuvvetin, cismin kütlesi ile ivmesinin çarpımına eşit olduğunu belirtir.",
		},
		{
			Text:          "Bir cismin potansiyel enerjisi neye bağlıdır?",
			Type:          mc,
			Options:       []string{"A) Yükseklik, kütle ve yerçekimi ivmesi", "B) Sadece hız", "C) Sadece kütle", "D) Sadece yükseklik"},
			CorrectAnswer: "A) Yükseklik, kütle ve yerçekimi ivmesi",
			Explanation:   "Yerçekimi potansiyel enerjisi E = m·g·h formülü ile hesaplanır.",
		},
		{
			Text:          "Bir cismin kinetik enerjisi neye bağlıdır?",
			Type:          mc,
			Options:       []string{"A) Kütle ve hızın karesi", "B) Sadece kütle", "C) Sadece hız", "D) Kütle ve hız"},
			CorrectAnswer: "A) Kütle ve hızın karesi",
			Explanation:   "Kinetik enerji E = (1/2)·m·v² formülü ile hesaplanır.",
		},
		{
			Text:          "Momentum korunumu ilkesi neyi ifade eder?",
			Type:          oe,
			CorrectAnswer: "Dış kuvvetlerin etki etmediği bir sistemde, toplam momentum sabit kalır.",
			Explanation:   "Çarpışma öncesi ve sonrası toplam momentum korunur, yani m₁v₁ + m₂v₂ = m₁v₁'+ m₂v₂'.",
		},
	},
	"Türkçe - Dilbilgisi": {
		{
			Text:          "Aşağıdaki cümlelerden hangisinde özne yanlış bulunmuştur?",
			Type:          mc,
			Options:       []string{"A) Kuşlar gökyüzünde uçuyordu.", "B) Güzel bir film izledik.", "C) Bahçedeki çiçekler açmış.", "D) Yarın okula gidecek."},
			CorrectAnswer: "D) Yarın okula gidecek.",
			Explanation:   "D seçeneğinde özne belli değildir, gizli öznedir.",
		},
		{
			Text:          "Aşağıdaki cümlelerden hangisinde yazım yanlışı vardır?",
			Type:          mc,
			Options:       []string{"A) Hiç bir şey söylemedi.", "B) Bu akşam size geleceğim.", "C) Türkçe sınavından yüz aldı.", "D) Pazartesi günü tatil olacak."},
			CorrectAnswer: "A) Hiç bir şey söylemedi.",
			Explanation:   `"Hiçbir" sözcüğü bitişik yazılır.`,
		},
	},
}

// generalPool answers unknown subjects and pads short pools.
var generalPool = []bankQuestion{
	{
		Text:          "Bu bir örnek çoktan seçmeli sorudur?",
		Type:          mc,
		Options:       []string{"A) Birinci seçenek", "B) İkinci seçenek", "C) Üçüncü seçenek", "D) Dördüncü seçenek"},
		CorrectAnswer: "A) Birinci seçenek",
		Explanation:   "Bu sorunun açıklaması burada yer alacak.",
	},
	{
		Text:          "Bu bir örnek doğru/yanlış sorudur?",
		Type:          tf,
		Options:       []string{"Doğru", "Yanlış"},
		CorrectAnswer: "Doğru",
		Explanation:   "Bu sorunun açıklaması burada yer alacak.",
	},
	{
		Text:          "Bu bir örnek boşluk doldurma sorudur: __________ boşluğu doldurun.",
		Type:          fb,
		CorrectAnswer: "Doğru cevap",
		Explanation:   "Bu sorunun açıklaması burada yer alacak.",
	},
	{
		Text:          "Bu bir örnek açık uçlu sorudur?",
		Type:          oe,
		CorrectAnswer: "Örnek cevap burada yer alacak.",
		Explanation:   "Bu sorunun açıklaması burada yer alacak.",
	},
}
