package header

// MIME is a closed enumeration of the media types the framework recognizes
// by name, built at compile time from mimeTable below.
type MIME int

const (
	MIMENone MIME = iota
	MIMETextPlain
	MIMETextHTML
	MIMETextCSS
	MIMETextCSV
	MIMEApplicationJSON
	MIMEApplicationJavaScript
	MIMEApplicationXML
	MIMEApplicationOctetStream
	MIMEApplicationFormURLEncoded
	MIMEMultipartFormData
	MIMEImagePNG
	MIMEImageJPEG
	MIMEImageGIF
	MIMEImageSVG
	MIMEFontWOFF2
)

type mimeEntry struct {
	mime       MIME
	utf8       bool
	wire       []string
	extensions []string
}

// mimeTable is the static (constant, utf8-capable, [wire-strings],
// [extensions]) list every MIME constant is built from, as a struct table
// instead of bare strings.
var mimeTable = []mimeEntry{
	{MIMETextPlain, true, []string{"text/plain"}, []string{".txt"}},
	{MIMETextHTML, true, []string{"text/html"}, []string{".html", ".htm"}},
	{MIMETextCSS, true, []string{"text/css"}, []string{".css"}},
	{MIMETextCSV, true, []string{"text/csv"}, []string{".csv"}},
	{MIMEApplicationJSON, true, []string{"application/json"}, []string{".json"}},
	{MIMEApplicationJavaScript, true, []string{"application/javascript", "text/javascript"}, []string{".js", ".mjs"}},
	{MIMEApplicationXML, true, []string{"application/xml", "text/xml"}, []string{".xml"}},
	{MIMEApplicationOctetStream, false, []string{"application/octet-stream"}, []string{".bin"}},
	{MIMEApplicationFormURLEncoded, false, []string{"application/x-www-form-urlencoded"}, nil},
	{MIMEMultipartFormData, false, []string{"multipart/form-data"}, nil},
	{MIMEImagePNG, false, []string{"image/png"}, []string{".png"}},
	{MIMEImageJPEG, false, []string{"image/jpeg"}, []string{".jpg", ".jpeg"}},
	{MIMEImageGIF, false, []string{"image/gif"}, []string{".gif"}},
	{MIMEImageSVG, true, []string{"image/svg+xml"}, []string{".svg"}},
	{MIMEFontWOFF2, false, []string{"font/woff2"}, []string{".woff2"}},
}

var (
	wireToMIME = make(map[string]MIME, len(mimeTable)*2)
	extToMIME  = make(map[string]MIME, len(mimeTable))
	mimeToInfo = make(map[MIME]mimeEntry, len(mimeTable))
)

func init() {
	for _, e := range mimeTable {
		mimeToInfo[e.mime] = e
		for _, w := range e.wire {
			wireToMIME[w] = e.mime
		}
		for _, ext := range e.extensions {
			extToMIME[ext] = e.mime
		}
	}
}

// UTF8Capable reports whether this MIME admits a "; charset=utf-8" suffix.
func (m MIME) UTF8Capable() bool {
	return mimeToInfo[m].utf8
}

// String returns the canonical wire string for this MIME.
func (m MIME) String() string {
	if e, ok := mimeToInfo[m]; ok && len(e.wire) > 0 {
		return e.wire[0]
	}
	return ""
}

// MIMEByExtension looks up a MIME by file extension (including the dot).
func MIMEByExtension(ext string) (MIME, bool) {
	m, ok := extToMIME[ext]
	return m, ok
}

// mimeByWire looks up a MIME by its exact wire literal.
func mimeByWire(s string) (MIME, bool) {
	m, ok := wireToMIME[s]
	return m, ok
}
