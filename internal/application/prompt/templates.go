package prompt

import (
	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/preference"
)

// template holds every instruction phrase for one locale. A payload is
// always built from exactly one template.
type template struct {
	roleRecipes string
	roleReport  string
	roleGrocery string

	headingTask        string
	headingConstraints string
	headingOutput      string

	allergiesLabel  string
	conditionsLabel string
	noneDeclared    string
	allergyRule     string
	conditionRule   string
	calorieRule     string // band min, band max
	quotaRule       string // quota
	languageRule    string

	ingredientsTask string // joined items
	budgetTask      string // style, amount
	costRule        string
	jsonRule        string

	groceryConditionRule string
	groceryJSONRule      string

	harmTask     string // item name
	harmLayout   string
	dailyTask    string // kcal
	dailyLayout  string
	reportNoJSON string

	groceryTask      string // amount
	grocerySumRule   string
	groceryRemainder string

	styles map[generation.FoodStyle]string
}

var templates = map[preference.Locale]template{
	preference.LocaleEnglish: {
		roleRecipes: "You are a careful recipe assistant that plans meals for people with allergies and medical conditions.",
		roleReport:  "You are a careful nutrition advisor that writes short structured reports.",
		roleGrocery: "You are a careful grocery planner that shops within a fixed budget.",

		headingTask:        "TASK",
		headingConstraints: "SAFETY RULES",
		headingOutput:      "OUTPUT FORMAT",

		allergiesLabel:  "Declared allergies",
		conditionsLabel: "Declared conditions",
		noneDeclared:    "none declared",
		allergyRule:     "Never use an ingredient that contains, or is contained in, any declared allergy. Name every remaining risk in warnings.",
		conditionRule:   "Every recipe must be suitable for the declared conditions.",
		calorieRule:     "Each recipe must have between %s and %s kcal (inclusive). Report calories as a number.",
		quotaRule:       "Return exactly %d recipes. Returning fewer or more is an error.",
		languageRule:    "Write every text value in English.",

		ingredientsTask: "Create recipes that use these ingredients: %s.",
		budgetTask:      "Create %s recipes whose full ingredient cost fits within a budget of %s.",
		costRule:        "Fill cost with the estimated total cost and costReason with a one-sentence explanation.",
		jsonRule:        "Respond only with a JSON array that matches the declared schema. Keep steps in cooking order.",

		harmTask:     "Analyze the health effects of this food item: %s.",
		harmLayout:   "PRODUCT: <name>\n├─ Summary: <one sentence>\n├─ Harmful components:\n│  └─ <component>: <effect>\n├─ Allergy and condition notes: <notes>\n└─ Verdict: <safe | limit | avoid>",
		dailyTask:    "Build a one-day meal plan totaling about %s kcal.",
		dailyLayout:  "DAILY PLAN: <total> kcal\n├─ Breakfast: <meal> (<kcal> kcal)\n├─ Lunch: <meal> (<kcal> kcal)\n├─ Dinner: <meal> (<kcal> kcal)\n├─ Snacks: <snack> (<kcal> kcal)\n└─ Notes: <advice>",
		reportNoJSON: "Answer in plain text using exactly this labeled tree layout, without JSON or markdown:",

		groceryTask:      "Build a grocery list for a total budget of %s.",
		grocerySumRule:   "totalSpent plus remaining must equal the budget exactly. Prices are numbers.",
		groceryRemainder: "Keep roughly 5-10% of the budget as remaining change.",

		groceryConditionRule: "Every item must be suitable for the declared conditions.",
		groceryJSONRule:      "Respond only with one JSON object that matches the declared schema.",

		styles: map[generation.FoodStyle]string{
			generation.StyleHome:     "home-style",
			generation.StyleFastFood: "fast food",
			generation.StyleHealthy:  "healthy",
			generation.StyleGourmet:  "gourmet",
			generation.StyleStreet:   "street food",
		},
	},
	preference.LocaleTurkish: {
		roleRecipes: "Alerjisi ve sağlık sorunu olan kişiler için yemek planlayan dikkatli bir tarif asistanısın.",
		roleReport:  "Kısa ve yapılandırılmış raporlar yazan dikkatli bir beslenme danışmanısın.",
		roleGrocery: "Sabit bir bütçeyle alışveriş yapan dikkatli bir market planlayıcısısın.",

		headingTask:        "GÖREV",
		headingConstraints: "GÜVENLİK KURALLARI",
		headingOutput:      "ÇIKTI BİÇİMİ",

		allergiesLabel:  "Bildirilen alerjiler",
		conditionsLabel: "Bildirilen sağlık durumları",
		noneDeclared:    "bildirilmedi",
		allergyRule:     "Bildirilen herhangi bir alerjeni içeren ya da onun içinde geçen hiçbir malzemeyi kullanma. Kalan tüm riskleri warnings alanında belirt.",
		conditionRule:   "Her tarif bildirilen sağlık durumlarına uygun olmalı.",
		calorieRule:     "Her tarif %s ile %s kcal arasında olmalı (sınırlar dahil). Kaloriyi sayı olarak yaz.",
		quotaRule:       "Tam olarak %d tarif döndür. Daha az ya da daha fazlası hatadır.",
		languageRule:    "Tüm metin değerlerini Türkçe yaz.",

		ingredientsTask: "Şu malzemeleri kullanan tarifler oluştur: %s.",
		budgetTask:      "Toplam malzeme maliyeti %[2]s bütçeye sığan %[1]s tarifler oluştur.",
		costRule:        "cost alanına tahmini toplam maliyeti, costReason alanına tek cümlelik açıklamayı yaz.",
		jsonRule:        "Yalnızca bildirilen şemaya uyan bir JSON dizisiyle yanıt ver. Adımları pişirme sırasına göre yaz.",

		harmTask:     "Bu gıda ürününün sağlığa etkilerini analiz et: %s.",
		harmLayout:   "ÜRÜN: <ad>\n├─ Özet: <tek cümle>\n├─ Zararlı bileşenler:\n│  └─ <bileşen>: <etki>\n├─ Alerji ve sağlık notları: <notlar>\n└─ Karar: <güvenli | sınırla | kaçın>",
		dailyTask:    "Toplamı yaklaşık %s kcal olan bir günlük beslenme planı hazırla.",
		dailyLayout:  "GÜNLÜK PLAN: <toplam> kcal\n├─ Kahvaltı: <öğün> (<kcal> kcal)\n├─ Öğle: <öğün> (<kcal> kcal)\n├─ Akşam: <öğün> (<kcal> kcal)\n├─ Ara öğün: <atıştırmalık> (<kcal> kcal)\n└─ Notlar: <öneri>",
		reportNoJSON: "JSON ya da markdown kullanmadan, tam olarak şu etiketli ağaç düzeniyle düz metin yanıt ver:",

		groceryTask:      "Toplam %s bütçeyle bir alışveriş listesi hazırla.",
		grocerySumRule:   "totalSpent ile remaining toplamı bütçeye tam olarak eşit olmalı. Fiyatlar sayıdır.",
		groceryRemainder: "Bütçenin yaklaşık %5-10'unu para üstü olarak bırak.",

		groceryConditionRule: "Her ürün bildirilen sağlık durumlarına uygun olmalı.",
		groceryJSONRule:      "Yalnızca bildirilen şemaya uyan tek bir JSON nesnesiyle yanıt ver.",

		styles: map[generation.FoodStyle]string{
			generation.StyleHome:     "ev yemeği tarzında",
			generation.StyleFastFood: "fast food tarzında",
			generation.StyleHealthy:  "sağlıklı",
			generation.StyleGourmet:  "gurme",
			generation.StyleStreet:   "sokak lezzeti tarzında",
		},
	},
	preference.LocaleGerman: {
		roleRecipes: "Du bist ein sorgfältiger Rezeptassistent, der Mahlzeiten für Menschen mit Allergien und Erkrankungen plant.",
		roleReport:  "Du bist ein sorgfältiger Ernährungsberater, der kurze strukturierte Berichte schreibt.",
		roleGrocery: "Du bist ein sorgfältiger Einkaufsplaner, der mit einem festen Budget einkauft.",

		headingTask:        "AUFGABE",
		headingConstraints: "SICHERHEITSREGELN",
		headingOutput:      "AUSGABEFORMAT",

		allergiesLabel:  "Angegebene Allergien",
		conditionsLabel: "Angegebene Erkrankungen",
		noneDeclared:    "keine angegeben",
		allergyRule:     "Verwende keine Zutat, die eine angegebene Allergie enthält oder darin enthalten ist. Nenne alle verbleibenden Risiken in warnings.",
		conditionRule:   "Jedes Rezept muss für die angegebenen Erkrankungen geeignet sein.",
		calorieRule:     "Jedes Rezept muss zwischen %s und %s kcal haben (einschließlich). Gib die Kalorien als Zahl an.",
		quotaRule:       "Gib genau %d Rezepte zurück. Weniger oder mehr ist ein Fehler.",
		languageRule:    "Schreibe alle Textwerte auf Deutsch.",

		ingredientsTask: "Erstelle Rezepte mit diesen Zutaten: %s.",
		budgetTask:      "Erstelle Rezepte im Stil %s, deren gesamte Zutatenkosten in ein Budget von %s passen.",
		costRule:        "Trage in cost die geschätzten Gesamtkosten und in costReason eine Begründung in einem Satz ein.",
		jsonRule:        "Antworte nur mit einem JSON-Array, das dem angegebenen Schema entspricht. Halte die Schritte in Kochreihenfolge.",

		harmTask:     "Analysiere die gesundheitlichen Auswirkungen dieses Lebensmittels: %s.",
		harmLayout:   "PRODUKT: <Name>\n├─ Zusammenfassung: <ein Satz>\n├─ Schädliche Bestandteile:\n│  └─ <Bestandteil>: <Wirkung>\n├─ Hinweise zu Allergien und Erkrankungen: <Hinweise>\n└─ Urteil: <unbedenklich | einschränken | meiden>",
		dailyTask:    "Erstelle einen Tagesplan mit insgesamt etwa %s kcal.",
		dailyLayout:  "TAGESPLAN: <gesamt> kcal\n├─ Frühstück: <Gericht> (<kcal> kcal)\n├─ Mittagessen: <Gericht> (<kcal> kcal)\n├─ Abendessen: <Gericht> (<kcal> kcal)\n├─ Snacks: <Snack> (<kcal> kcal)\n└─ Hinweise: <Rat>",
		reportNoJSON: "Antworte als reiner Text genau in diesem beschrifteten Baumlayout, ohne JSON oder Markdown:",

		groceryTask:      "Erstelle eine Einkaufsliste für ein Gesamtbudget von %s.",
		grocerySumRule:   "totalSpent plus remaining muss genau dem Budget entsprechen. Preise sind Zahlen.",
		groceryRemainder: "Behalte etwa 5-10 % des Budgets als Wechselgeld übrig.",

		groceryConditionRule: "Jeder Artikel muss für die angegebenen Erkrankungen geeignet sein.",
		groceryJSONRule:      "Antworte nur mit einem einzigen JSON-Objekt, das dem angegebenen Schema entspricht.",

		styles: map[generation.FoodStyle]string{
			generation.StyleHome:     "Hausmannskost",
			generation.StyleFastFood: "Fast Food",
			generation.StyleHealthy:  "gesunde Küche",
			generation.StyleGourmet:  "Gourmet",
			generation.StyleStreet:   "Streetfood",
		},
	},
}

// templateFor returns the template for a locale, falling back to English
func templateFor(loc preference.Locale) template {
	if t, ok := templates[loc]; ok {
		return t
	}
	return templates[preference.LocaleEnglish]
}

// markers returns phrases that identify a locale's template; used to detect
// mixed-language payloads
func (t template) markers() []string {
	return []string{t.roleRecipes, t.roleReport, t.roleGrocery, t.headingTask, t.headingConstraints, t.headingOutput, t.languageRule}
}
