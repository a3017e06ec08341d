package patches

import "legacy-bridge/internal/patch"

// ProgressSteps is the resolution of fractional progress forwarded to the host.
const ProgressSteps = 1000

func showProgress(c *patch.Call) {
	if c.Bridge.IsLegacyMode() {
		return
	}

	p, ok := patch.Arg[float64](c, 0)
	if !ok {
		return
	}

	c.Bridge.ShowProgress(int(ProgressSteps*p), ProgressSteps)
}

func showProgressRatio(c *patch.Call) {
	if c.Bridge.IsLegacyMode() {
		return
	}

	current, ok1 := patch.Arg[int](c, 0)
	final, ok2 := patch.Arg[int](c, 1)

	if ok1 && ok2 {
		c.Bridge.ShowProgress(current, final)
	}
}

// showStatus forwards status text once the host session is initialized;
// earlier messages are dropped.
func showStatus(c *patch.Call) {
	if c.Bridge.IsLegacyMode() || !c.Bridge.IsInitialized() {
		return
	}

	if text, ok := patch.Arg[string](c, 0); ok {
		c.Bridge.ShowStatus(text)
	}
}
