// Package genes holds the canonical neural crest gene list and its
// cross-reference IDs.
//
// This is the name resolution layer: every normalizer consults the table to
// know which genes to query and how to map source-native IDs back to HGNC
// symbols. The set is curated and closed; source-presence flags are derived
// downstream, never hand-set here.
//
// Coverage spans the neural crest gene regulatory network: neural plate
// border specification, neural crest specifiers, EMT and migration,
// signaling pathways (BMP, WNT, FGF, SHH, NOTCH, EDN, RA), craniofacial
// patterning and disease, melanocyte/pigmentation, enteric nervous system,
// and cardiac neural crest.
//
// References:
//
//	Simoes-Costa & Bronner, Development 142:242-257 (2015)
//	Martik & Bronner, Nat Rev Mol Cell Biol 18:453-464 (2017)
//	Sauka-Spengler & Bronner-Fraser, Nat Rev Mol Cell Biol 9:557-568 (2008)
package genes

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// XRef maps one gene to its identifiers across sources.
type XRef struct {
	// NCBI is the NCBI Gene ID (human).
	NCBI string
	// UniProt is the canonical UniProt accession (human).
	UniProt string
	// OMIM is the OMIM gene/locus MIM number.
	OMIM string
}

// Registry maps HGNC symbols to cross-reference IDs.
var Registry = map[string]XRef{
	// Neural plate border specification
	"DLX2":   {NCBI: "1746", UniProt: "Q07687", OMIM: "126255"},
	"DLX3":   {NCBI: "1747", UniProt: "O60479", OMIM: "600525"},
	"DLX5":   {NCBI: "1749", UniProt: "P56178", OMIM: "600028"},
	"DLX6":   {NCBI: "1750", UniProt: "P56182", OMIM: "600030"},
	"GBX2":   {NCBI: "2637", UniProt: "P40424", OMIM: "601135"},
	"MSX1":   {NCBI: "4487", UniProt: "P28360", OMIM: "142983"},
	"MSX2":   {NCBI: "4488", UniProt: "P35548", OMIM: "123101"},
	"PAX3":   {NCBI: "5077", UniProt: "P23760", OMIM: "606597"},
	"PAX6":   {NCBI: "5080", UniProt: "P26367", OMIM: "607108"},
	"PAX7":   {NCBI: "5081", UniProt: "P23759", OMIM: "167410"},
	"TFAP2A": {NCBI: "7020", UniProt: "P05549", OMIM: "107580"},
	"TFAP2B": {NCBI: "7021", UniProt: "Q92481", OMIM: "601601"},
	"ZIC1":   {NCBI: "7545", UniProt: "Q15915", OMIM: "600470"},

	// Neural crest specifiers
	"ETS1":   {NCBI: "2113", UniProt: "P14921", OMIM: "164720"},
	"FOXD3":  {NCBI: "27022", UniProt: "Q9UJU5", OMIM: "611539"},
	"MYCN":   {NCBI: "4613", UniProt: "P04198", OMIM: "164840"},
	"NR2F1":  {NCBI: "7025", UniProt: "P10589", OMIM: "132890"},
	"NR2F2":  {NCBI: "7026", UniProt: "P24468", OMIM: "107773"},
	"SNAI1":  {NCBI: "6615", UniProt: "O95863", OMIM: "604238"},
	"SNAI2":  {NCBI: "6591", UniProt: "O43623", OMIM: "602150"},
	"SOX5":   {NCBI: "6660", UniProt: "P35711", OMIM: "604975"},
	"SOX8":   {NCBI: "30812", UniProt: "P57073", OMIM: "605923"},
	"SOX9":   {NCBI: "6662", UniProt: "P48436", OMIM: "608160"},
	"SOX10":  {NCBI: "6663", UniProt: "P56693", OMIM: "602229"},
	"TWIST1": {NCBI: "7291", UniProt: "Q15672", OMIM: "601622"},
	"TWIST2": {NCBI: "117581", UniProt: "Q8WVJ9", OMIM: "607556"},

	// EMT and migration
	"CDH2":  {NCBI: "1000", UniProt: "P19022", OMIM: "114020"},
	"CDH6":  {NCBI: "1004", UniProt: "P55285", OMIM: "603007"},
	"CDH11": {NCBI: "1009", UniProt: "P55287", OMIM: "600023"},
	"CXCR4": {NCBI: "7852", UniProt: "P61073", OMIM: "162643"},
	"FN1":   {NCBI: "2335", UniProt: "P02751", OMIM: "135600"},
	"ITGB1": {NCBI: "3688", UniProt: "P05556", OMIM: "135630"},
	"MMP2":  {NCBI: "4313", UniProt: "P08253", OMIM: "120360"},
	"MMP9":  {NCBI: "4318", UniProt: "P14780", OMIM: "120361"},
	"NGFR":  {NCBI: "4804", UniProt: "P08138", OMIM: "162010"},
	"RAC1":  {NCBI: "5879", UniProt: "P63000", OMIM: "602048"},
	"RHOA":  {NCBI: "387", UniProt: "P61586", OMIM: "165390"},
	"ZEB2":  {NCBI: "9839", UniProt: "O60315", OMIM: "605802"},

	// Signaling pathways
	"ADAM10":  {NCBI: "102", UniProt: "O14672", OMIM: "602192"},
	"ALDH1A2": {NCBI: "8854", UniProt: "O94788", OMIM: "603687"},
	"AXIN2":   {NCBI: "8313", UniProt: "Q9Y2T1", OMIM: "604025"},
	"BMP2":    {NCBI: "650", UniProt: "P12643", OMIM: "112261"},
	"BMP4":    {NCBI: "652", UniProt: "P12644", OMIM: "112262"},
	"BMP7":    {NCBI: "655", UniProt: "P18075", OMIM: "112267"},
	"CTNNB1":  {NCBI: "1499", UniProt: "P35222", OMIM: "116806"},
	"DLL1":    {NCBI: "28514", UniProt: "O00548", OMIM: "606582"},
	"EDN1":    {NCBI: "1906", UniProt: "P05305", OMIM: "131240"},
	"EDN3":    {NCBI: "1908", UniProt: "P14138", OMIM: "131242"},
	"EDNRA":   {NCBI: "1909", UniProt: "P25101", OMIM: "131243"},
	"EDNRB":   {NCBI: "1910", UniProt: "P24530", OMIM: "131244"},
	"FGF8":    {NCBI: "2253", UniProt: "P55075", OMIM: "600483"},
	"FGFR1":   {NCBI: "2260", UniProt: "P11362", OMIM: "136350"},
	"FGFR2":   {NCBI: "2263", UniProt: "P21802", OMIM: "176943"},
	"FGFR3":   {NCBI: "2261", UniProt: "P22607", OMIM: "134934"},
	"JAG1":    {NCBI: "182", UniProt: "P78504", OMIM: "601920"},
	"LEF1":    {NCBI: "51176", UniProt: "Q9UJU2", OMIM: "153245"},
	"NOTCH1":  {NCBI: "4851", UniProt: "P46531", OMIM: "190198"},
	"NOTCH2":  {NCBI: "4853", UniProt: "Q04721", OMIM: "600275"},
	"RARA":    {NCBI: "5914", UniProt: "P10276", OMIM: "180240"},
	"SHH":     {NCBI: "6469", UniProt: "Q15465", OMIM: "600725"},
	"SMAD1":   {NCBI: "4086", UniProt: "Q15797", OMIM: "601595"},
	"TGFBR1":  {NCBI: "7046", UniProt: "P36897", OMIM: "190181"},
	"TGFBR2":  {NCBI: "7048", UniProt: "P37173", OMIM: "190182"},
	"WNT1":    {NCBI: "7471", UniProt: "P04628", OMIM: "164820"},
	"WNT3A":   {NCBI: "89780", UniProt: "P56704", OMIM: "606359"},

	// Craniofacial patterning and disease
	"CHD7":  {NCBI: "55636", UniProt: "Q9P2D1", OMIM: "608892"},
	"ECE1":  {NCBI: "1889", UniProt: "P42892", OMIM: "600423"},
	"ERBB3": {NCBI: "2065", UniProt: "P21860", OMIM: "190151"},
	"EVC":   {NCBI: "2121", UniProt: "P57679", OMIM: "604831"},
	"IRF6":  {NCBI: "3664", UniProt: "O14896", OMIM: "607199"},
	"NF1":   {NCBI: "4763", UniProt: "P21359", OMIM: "613113"},
	"RUNX2": {NCBI: "860", UniProt: "Q13950", OMIM: "600211"},
	"SOX2":  {NCBI: "6657", UniProt: "P48431", OMIM: "184429"},
	"TBX1":  {NCBI: "6899", UniProt: "O43435", OMIM: "602054"},
	"TCOF1": {NCBI: "6949", UniProt: "Q13428", OMIM: "606847"},

	// Melanocyte / pigmentation
	"DCT":   {NCBI: "1638", UniProt: "P40126", OMIM: "191275"},
	"KIT":   {NCBI: "3815", UniProt: "P10721", OMIM: "164920"},
	"MITF":  {NCBI: "4286", UniProt: "O75030", OMIM: "156845"},
	"PMEL":  {NCBI: "6490", UniProt: "P40967", OMIM: "155550"},
	"TYR":   {NCBI: "7299", UniProt: "P14679", OMIM: "606933"},
	"TYRP1": {NCBI: "7306", UniProt: "P17643", OMIM: "115501"},

	// Enteric nervous system
	"GDNF":   {NCBI: "2668", UniProt: "P39905", OMIM: "600837"},
	"GFRA1":  {NCBI: "2674", UniProt: "P56159", OMIM: "601496"},
	"PHOX2B": {NCBI: "8929", UniProt: "Q99453", OMIM: "603851"},
	"RET":    {NCBI: "5979", UniProt: "P07949", OMIM: "164761"},
	"SEMA3A": {NCBI: "10371", UniProt: "Q14563", OMIM: "603961"},
	"NRP1":   {NCBI: "8829", UniProt: "O14786", OMIM: "602069"},

	// Cardiac neural crest
	"GATA4":  {NCBI: "2626", UniProt: "P43694", OMIM: "600576"},
	"HAND1":  {NCBI: "9421", UniProt: "O96004", OMIM: "602406"},
	"HAND2":  {NCBI: "9464", UniProt: "P61296", OMIM: "602407"},
	"MEF2C":  {NCBI: "4208", UniProt: "Q06413", OMIM: "600662"},
	"NKX2-5": {NCBI: "1482", UniProt: "P52952", OMIM: "600584"},
	"PLXNA2": {NCBI: "5362", UniProt: "O75051", OMIM: "601054"},
	"SEMA3C": {NCBI: "10512", UniProt: "Q99985", OMIM: "602645"},
	"TBX5":   {NCBI: "6910", UniProt: "Q99593", OMIM: "601620"},
}

// Roles classifies symbols by developmental role, used for graph coloring.
var Roles = map[string][]string{
	"border_spec": {
		"DLX2", "DLX3", "DLX5", "DLX6", "GBX2",
		"MSX1", "MSX2", "PAX3", "PAX6", "PAX7",
		"TFAP2A", "TFAP2B", "ZIC1",
	},
	"nc_specifier": {
		"ETS1", "FOXD3", "MYCN", "NR2F1", "NR2F2",
		"SNAI1", "SNAI2", "SOX5", "SOX8", "SOX9", "SOX10",
		"TWIST1", "TWIST2",
	},
	"emt_migration": {
		"CDH2", "CDH6", "CDH11", "CXCR4", "FN1",
		"ITGB1", "MMP2", "MMP9", "NGFR",
		"RAC1", "RHOA", "ZEB2",
	},
	"signaling": {
		"ADAM10", "ALDH1A2", "AXIN2",
		"BMP2", "BMP4", "BMP7", "CTNNB1",
		"DLL1", "EDN1", "EDN3", "EDNRA", "EDNRB",
		"FGF8", "FGFR1", "FGFR2", "FGFR3",
		"JAG1", "LEF1", "NOTCH1", "NOTCH2",
		"RARA", "SHH", "SMAD1",
		"TGFBR1", "TGFBR2",
		"WNT1", "WNT3A",
	},
	"craniofacial": {
		"CHD7", "ECE1", "ERBB3", "EVC", "IRF6",
		"NF1", "RUNX2", "SOX2", "TBX1", "TCOF1",
	},
	"melanocyte": {
		"DCT", "KIT", "MITF", "PMEL", "TYR", "TYRP1",
	},
	"enteric": {
		"GDNF", "GFRA1", "NRP1", "PHOX2B", "RET", "SEMA3A",
	},
	"cardiac": {
		"GATA4", "HAND1", "HAND2", "MEF2C",
		"NKX2-5", "PLXNA2", "SEMA3C", "TBX5",
	},
}

var (
	symbolToRole    map[string]string
	ncbiToSymbol    map[string]string
	uniprotToSymbol map[string]string
	omimToSymbol    map[string]string
)

func init() {
	symbolToRole = make(map[string]string)
	for role, symbols := range Roles {
		for _, s := range symbols {
			symbolToRole[s] = role
		}
	}
	ncbiToSymbol = make(map[string]string, len(Registry))
	uniprotToSymbol = make(map[string]string, len(Registry))
	omimToSymbol = make(map[string]string, len(Registry))
	for sym, x := range Registry {
		ncbiToSymbol[x.NCBI] = sym
		uniprotToSymbol[x.UniProt] = sym
		omimToSymbol[x.OMIM] = sym
	}
}

// Symbols returns the sorted list of all gene symbols.
func Symbols() []string {
	out := make([]string, 0, len(Registry))
	for sym := range Registry {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// RoleOf returns the developmental role for a symbol, or "" if unknown.
func RoleOf(symbol string) string {
	return symbolToRole[symbol]
}

// SymbolForNCBI resolves an NCBI Gene ID back to an HGNC symbol.
func SymbolForNCBI(id string) (string, bool) {
	sym, ok := ncbiToSymbol[id]
	return sym, ok
}

// SymbolForUniProt resolves a UniProt accession back to an HGNC symbol.
func SymbolForUniProt(acc string) (string, bool) {
	sym, ok := uniprotToSymbol[acc]
	return sym, ok
}

// SymbolForOMIM resolves an OMIM MIM number back to an HGNC symbol.
func SymbolForOMIM(mim string) (string, bool) {
	sym, ok := omimToSymbol[mim]
	return sym, ok
}

// ExportCUE writes the gene list as a CUE fragment for model
// self-description.
func ExportCUE(outputPath string) error {
	var b strings.Builder
	b.WriteString("package froq\n\n")
	b.WriteString("// Canonical gene list with HGNC symbols.\n")
	b.WriteString("// Auto-generated by the genes command -- do not hand-edit.\n")
	fmt.Fprintf(&b, "// %d genes across %d developmental roles.\n\n", len(Registry), len(Roles))
	for _, sym := range Symbols() {
		fmt.Fprintf(&b, "genes: %q: symbol: %q\n", sym, sym)
	}
	b.WriteString("\n")

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o750); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write gene list: %w", err)
	}
	return nil
}
