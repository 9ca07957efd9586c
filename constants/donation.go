package constants

import "strings"

// DonationType is one ritual phrase written on the envelope front together
// with its religious/ceremonial category.
type DonationType struct {
	Type     string
	Category string
}

// DonationTypes is the closed vocabulary of envelope phrases, in match
// priority order. Longer phrases come before their substrings (御供物料
// before 御供) so the most specific phrase wins.
var DonationTypes = []DonationType{
	{Type: "御霊前", Category: "仏式・神式・キリスト教式"},
	{Type: "御仏前", Category: "仏式（四十九日後）"},
	{Type: "御香典", Category: "仏式"},
	{Type: "御香料", Category: "仏式"},
	{Type: "御花料", Category: "キリスト教式"},
	{Type: "御玉串料", Category: "神式"},
	{Type: "御榊料", Category: "神式"},
	{Type: "御供物料", Category: "神式"},
	{Type: "御弔慰料", Category: "一般"},
	{Type: "御悔", Category: "一般"},
	{Type: "御供", Category: "仏式"},
}

// DonationCategory returns the ceremonial category for a phrase, if known.
func DonationCategory(phrase string) (string, bool) {
	for _, dt := range DonationTypes {
		if dt.Type == phrase {
			return dt.Category, true
		}
	}
	return "", false
}

// Titles is the closed vocabulary of organizational titles recognized on
// envelopes, longest first so boundary matching prefers the most specific
// entry (代表取締役社長 before 社長).
var Titles = []string{
	"代表取締役社長", "代表取締役会長", "代表取締役", "取締役会長", "取締役社長",
	"専務取締役", "常務取締役", "取締役", "執行役員", "監査役",
	"名誉会長", "副会長", "会長", "副社長", "社長",
	"専務", "常務", "相談役", "顧問", "参与",
	"事務局長", "支社長", "支店長", "支配人", "工場長",
	"営業所長", "営業部長", "総務部長", "所長", "店長", "本部長", "部長",
	"次長", "課長", "係長", "主任", "主事",
	"班長", "工場主", "理事長", "副理事長", "常務理事",
	"理事", "監事", "組合長", "団長", "局長",
	"署長", "園長", "学長", "校長", "教頭",
	"名誉教授", "教授", "准教授", "講師", "助教",
	"院長", "副院長", "医院長", "会頭", "頭取",
	"市長", "町長", "村長", "区長", "議長",
	"議員", "委員長", "幹事長", "住職", "宮司",
	"牧師", "神父",
}

// CorporatePrefixes are entity designators that precede the organization
// name (株式会社ヤマダ).
var CorporatePrefixes = []string{
	"株式会社", "有限会社", "合同会社", "合資会社", "合名会社",
	"一般社団法人", "公益社団法人", "一般財団法人", "公益財団法人",
	"医療法人", "学校法人", "宗教法人", "社会福祉法人", "NPO法人",
}

// CorporateSuffixes are entity designators that follow the organization
// name (ヤマダ株式会社).
var CorporateSuffixes = []string{
	"株式会社", "有限会社", "合同会社", "合資会社", "合名会社",
}

// BusinessSuffixes are generic trade-name endings that mark the preceding
// token as an organization even without a legal entity designator.
var BusinessSuffixes = []string{
	"商事", "商会", "商店", "工業", "工務店", "建設", "組合", "工房",
	"医院", "病院", "クリニック", "薬局", "会社", "協会", "興業",
	"運輸", "電機", "製作所", "事務所", "青年会", "自治会", "町内会",
	"本部", "支部", "堂", "部", "課",
}

// IsTitle reports whether s is exactly one of the known titles.
func IsTitle(s string) bool {
	s = strings.TrimSpace(s)
	for _, t := range Titles {
		if s == t {
			return true
		}
	}
	return false
}
