package audionode

import "oscmix/internal/audiobuf"

// channelStride returns the byte stride between successive frames of
// channel c in buf.
func channelStride(buf audiobuf.Buffer) int {
	bps := buf.Format().BytesPerSample()
	if buf.Planar() {
		return bps
	}
	return buf.Layout().Channels() * bps
}

// mixChannel writes into out's channel dstCh the average of in's channels
// listed in srcChs, sample by sample, over in's full frame count.
func mixChannel(out audiobuf.Buffer, dstCh int, in audiobuf.Buffer, srcChs []int) {
	frames := in.Frames()
	format := out.Format()
	dstBuf := out.ChannelPtr(dstCh)
	dstStride := channelStride(out)
	n := float64(len(srcChs))
	for f := 0; f < frames; f++ {
		var sum float64
		for _, sc := range srcChs {
			srcBuf := in.ChannelPtr(sc)
			sum += sampleToFloat64(srcBuf, f*channelStride(in), in.Format())
		}
		float64ToSample(dstBuf, f*dstStride, format, sum/n)
	}
}

// copySamplesGained copies frames samples from in's channel srcCh into out's
// channel dstCh, scaling by gain, converting sample representation if the
// two buffers differ in format.
func copySamplesGained(out audiobuf.Buffer, dstCh int, in audiobuf.Buffer, srcCh int, frames int, gain float64) {
	dstBuf := out.ChannelPtr(dstCh)
	srcBuf := in.ChannelPtr(srcCh)
	dstStride := channelStride(out)
	srcStride := channelStride(in)
	for f := 0; f < frames; f++ {
		v := sampleToFloat64(srcBuf, f*srcStride, in.Format()) * gain
		float64ToSample(dstBuf, f*dstStride, out.Format(), v)
	}
}

// applyGainInPlace scales every sample of out's channel c by gain.
func applyGainInPlace(out audiobuf.Buffer, c int, gain float64) {
	buf := out.ChannelPtr(c)
	stride := channelStride(out)
	frames := out.Frames()
	format := out.Format()
	for f := 0; f < frames; f++ {
		v := sampleToFloat64(buf, f*stride, format) * gain
		float64ToSample(buf, f*stride, format, v)
	}
}
