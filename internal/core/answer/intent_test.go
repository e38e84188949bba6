package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectIntents(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intents
	}{
		{
			name: "hardwarehub scheduling",
			text: "Can I schedule a meeting with HardwareHub?",
			want: Intents{HardwareHub: true, Scheduling: true},
		},
		{
			name: "spaced brand name",
			text: "tell me about Hardware Hub",
			want: Intents{HardwareHub: true},
		},
		{
			name: "services only",
			text: "I need FEA on this bracket",
			want: Intents{Services: true},
		},
		{
			name: "plain question",
			text: "what is the yield strength of 6061-T6?",
			want: Intents{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIntents(tt.text))
		})
	}
}

func TestWantsVendors(t *testing.T) {
	assert.True(t, WantsVendors("I need a medical-grade CNC supplier"))
	assert.True(t, WantsVendors("which VENDORS do you recommend"))
	assert.True(t, WantsVendors("who should I go to for anodizing"))
	assert.False(t, WantsVendors("how do I size this bolt"))
}

func TestWantsSystemDocsOnly(t *testing.T) {
	assert.True(t, WantsSystemDocsOnly("run a MEAI self-check please"))
	assert.True(t, WantsSystemDocsOnly("answer in system-docs-only mode"))
	assert.False(t, WantsSystemDocsOnly("check the system documentation"))
}
