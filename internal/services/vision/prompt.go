package vision

// moduleInferencePrompt steers the model toward a strict JSON inventory of the
// photographed rack. Position hints are free-form and advisory only.
const moduleInferencePrompt = `You identify Eurorack synthesizer modules in rack photos.

Respond with JSON only, in this exact shape:
{"modules":[{"brand":"","model":"","category":"","confidence":0.0,"position_hint":""}]}

Rules:
- List every module you can see, left to right, top row first.
- "category" is one of: oscillator, noise, sampler, lfo, envelope, random,
  filter, vca, effect, delay, reverb, mixer, sequencer, clock, mult, blank, utility.
- "confidence" is your certainty in [0,1] that brand and model are correct.
- Report blind panels as category "blank" with an empty model.
- Never invent modules you cannot see. Never omit low-confidence sightings;
  report them with low confidence instead.`
