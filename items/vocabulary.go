package items

import "slices"

// Adjectives is the fixed vocabulary a special item may carry.
var Adjectives = []string{
	"Nonchalant", "Strong", "Tall", "Laptop-Sticker-Collecting", "Crystal",
	"Startup-Accelerating", "Buff", "Weak-Like-Abhi", "Cooked", "High-WPM",
	"FAANG", "Indian 🇮🇳🇮🇳🇮🇳", "American 🦅🦅🇺🇸🇺🇸", "Brain-Rotted", "Infernal",
	"Underdeveloped", "NeoVim-Using", "Ethereal", "💀", "AI-Generated",
	"Arch-Linux-Using", "Cyber", "MCP-Integrated", "Rizzing", "Obsidian",
	"Hackathon-Winning", "Terrible", "Large", "Currently-Cramping", "Vibe-Coding",
	"Merge-Conflicting", "Terminally-Online", "Sigma", "API-Breaking", "Uncaffeinated",
	"Caffeinated", "DDoS-Vulnerable", "Intern-Coded", "Clean-Coded", "LinkedIn-Posting",
}

func IsAdjective(s string) bool {
	return slices.Contains(Adjectives, s)
}
