package inference

// DefaultDescription is returned for types without a description.
const DefaultDescription = "No description available"

// Descriptions are the human readable summaries of the material types.
var Descriptions = map[string]string{
	"Recycled PET Nonwoven": "Recycled PET Nonwoven is a nonwoven geotextile made from recycled PET, offering good filtration and cost-effectiveness.",
	"PET Woven":             "PET Woven is a woven geotextile from PET, known for high tensile strength and durability.",
	"Hybrid (PP+Coir)":      "Hybrid (PP+Coir) is a hybrid material combining polypropylene and coir, providing strength and biodegradability.",
	"PP Woven":              "PP Woven is a polypropylene woven geotextile, excellent for reinforcement and separation.",
	"Glass Fiber Composite": "Glass Fiber Composite is a composite with glass fibers, ideal for high-strength applications.",
	"PP Nonwoven":           "PP Nonwoven is a nonwoven polypropylene geotextile, versatile for drainage and filtration.",
	"Coir Woven":            "Coir Woven is a woven coir geotextile, biodegradable and eco-friendly.",
	"PLA Nonwoven":          "PLA Nonwoven is a nonwoven from PLA, a bio-based polymer with good environmental profile.",
	"HDPE Grid":             "HDPE Grid is an HDPE geogrid, used for soil stabilization and reinforcement.",
}

// Describe returns the description of the given type.
func Describe(descriptions map[string]string, t string) string {
	if d, ok := descriptions[t]; ok {
		return d
	}
	return DefaultDescription
}
